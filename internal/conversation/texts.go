package conversation

// User-facing texts for the reservation flow. Spanish first, the parser
// side accepts English keywords too.
const (
	msgWelcome = `¡Hola! 👋 Soy el asistente de reservas.

Te ayudo a reservar una mesa en segundos.`

	msgHelp = `🤔 No entendí eso.

Escribime:
• "reservar" para reservar una mesa
• "cancelar" para cancelar una reserva
• "reiniciar" para empezar de nuevo`

	msgRestarted = `Listo, empecemos de nuevo. Escribí "reservar" para reservar una mesa o "cancelar" para cancelar una reserva. 🔄`

	msgNoRestaurants = `Por ahora no hay restaurantes disponibles. Probá más tarde. 🙏`

	msgUnknownRestaurant = `No encontré ese restaurante. Respondé con el número de la lista o el código (por ejemplo "PAR"). 📋`

	msgAskPartySize = `¡Buena elección! %s 🍽️

¿Para cuántas personas? (1 a 20)`

	msgBadPartySize = `Necesito un número de personas entre 1 y 20. 🔢`

	msgAskDate = `¿Para qué fecha? 📅

Escribí la fecha como 2025-12-31, o "hoy" / "mañana".`

	msgBadDate = `No entendí la fecha. Usá el formato AAAA-MM-DD (por ejemplo 2025-12-31) y que no sea en el pasado. 📅`

	msgAskService = `¿Almuerzo o cena? 🍷

1. Almuerzo
2. Cena`

	msgBadService = `Respondé "1" o "almuerzo" para el mediodía, "2" o "cena" para la noche.`

	msgConfirm = `📝 Resumen de tu reserva:

🏪 Restaurante: %s
📅 Fecha: %s
🕐 Servicio: %s
👥 Personas: %d

¿Confirmo? (si/no)`

	msgReserved = `✅ ¡Reserva confirmada!

🎫 Número de reserva: %d
🏪 Restaurante: %s
📅 Fecha: %s (%s)
👥 Personas: %d

Guardá el número por si necesitás cancelar. ¡Te esperamos!`

	msgNotReserved = `Ok, no reservé nada. Escribí "reservar" cuando quieras empezar de nuevo. 👍`

	msgNoAvailabilityIntro = `😔 No hay lugar para esa fecha, pero encontré estas opciones:`

	msgAltPickFooter = `Respondé con el número de la opción que te sirva, o "no" para salir.`

	msgBadAltPick = `Respondé con el número de una de las opciones de la lista, o "no" para salir.`

	msgNoAlternatives = `😔 No hay lugar para esa fecha y no encontré alternativas cercanas.

Escribí "reservar" para probar con otra fecha u otro restaurante.`

	msgAskCancelID = `Para cancelar necesito el número de reserva. 🎫

¿Cuál es?`

	msgBadCancelID = `El número de reserva es un número, por ejemplo 1042. ¿Cuál es?`

	msgCancelNotFound = `No encontré una reserva con ese número. Verificá el número e intentá de nuevo con "cancelar". 🔍`

	msgCancelled = `✅ Reserva %d cancelada. ¡Esperamos verte pronto!`

	msgTryAgainLater = `❌ Algo salió mal de nuestro lado. Probá de nuevo en unos minutos. 🙏`
)
