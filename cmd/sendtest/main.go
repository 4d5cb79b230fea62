// Sends a one-off WhatsApp text through the configured account.
// Usage: go run ./cmd/sendtest <wa_id> [message]
package main

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/lucasviilaa/whatsapp-reservas-backend/internal/bot"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	token := os.Getenv("WHATSAPP_TOKEN")
	phoneNumberID := os.Getenv("WHATSAPP_PHONE_NUMBER_ID")
	if token == "" || phoneNumberID == "" {
		log.Fatal("Missing WHATSAPP_TOKEN or WHATSAPP_PHONE_NUMBER_ID")
	}

	if len(os.Args) < 2 {
		log.Fatal("Usage: sendtest <wa_id> [message]")
	}
	to := os.Args[1]
	message := "Hola! 👋 Soy el asistente de reservas. Escribime \"reservar\" para reservar una mesa."
	if len(os.Args) > 2 {
		message = strings.Join(os.Args[2:], " ")
	}

	whatsappBot := bot.NewWhatsAppBot(token, phoneNumberID)
	if err := whatsappBot.SendTextMessage(to, message); err != nil {
		log.Fatal("Failed to send message: ", err)
	}
	log.Println("Message sent to", to)
}
