package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lucasviilaa/whatsapp-reservas-backend/internal/models"
	"github.com/lucasviilaa/whatsapp-reservas-backend/internal/store"
)

// maxAlternatives caps the numbered list offered in ASK_ALT_PICK so the
// pick stays a single digit.
const maxAlternatives = 9

const alternativeDays = 3

// Machine drives the per-user reservation flow. Each inbound text loads
// the session, dispatches on its state, and upserts the session back.
// There is no locking between messages; the last write wins.
type Machine struct {
	store store.Store
	now   func() time.Time
}

func New(st store.Store) *Machine {
	return &Machine{store: st, now: time.Now}
}

// Handle processes one inbound text message and returns the reply to
// send back. The returned error is for logging only; Handle always
// produces a user-facing reply.
func (m *Machine) Handle(ctx context.Context, waID, profileName, text string) (string, error) {
	sess, err := m.store.GetSession(ctx, waID)
	if err != nil {
		return msgTryAgainLater, err
	}

	input := normalize(text)
	if input == "reiniciar" || input == "reset" {
		sess.Reset()
		if err := m.store.SaveSession(ctx, sess); err != nil {
			return msgTryAgainLater, err
		}
		return msgRestarted, nil
	}

	var reply string
	switch sess.State {
	case models.StateIdle:
		reply, err = m.handleIdle(ctx, sess, input)
	case models.StateAskRestaurant:
		reply, err = m.handleAskRestaurant(ctx, sess, input)
	case models.StateAskPartySize:
		reply, err = m.handleAskPartySize(sess, input)
	case models.StateAskDate:
		reply, err = m.handleAskDate(sess, input)
	case models.StateAskService:
		reply, err = m.handleAskService(ctx, sess, input)
	case models.StateConfirmReservation:
		reply, err = m.handleConfirm(ctx, sess, input, profileName)
	case models.StateAskAltPick:
		reply, err = m.handleAltPick(sess, input)
	case models.StateAskCancelID:
		reply, err = m.handleCancelID(ctx, sess, input)
	default:
		// Unknown state in the table, likely from an older deploy.
		logrus.WithFields(logrus.Fields{"wa_id": waID, "state": sess.State}).Warn("Unknown session state, resetting")
		sess.Reset()
		reply, err = m.handleIdle(ctx, sess, input)
	}
	if err != nil {
		return msgTryAgainLater, err
	}

	if err := m.store.SaveSession(ctx, sess); err != nil {
		// The reply is still valid; the user just may be asked again.
		logrus.WithError(err).WithField("wa_id", waID).Error("Failed to save session")
	}
	return reply, nil
}

func (m *Machine) handleIdle(ctx context.Context, sess *models.Session, input string) (string, error) {
	switch {
	case containsAny(input, "cancelar", "cancel"):
		sess.State = models.StateAskCancelID
		return msgAskCancelID, nil
	case isGreeting(input) || containsAny(input, "reservar", "reserva", "book"):
		menu, err := m.restaurantMenu(ctx)
		if err != nil {
			return "", err
		}
		sess.State = models.StateAskRestaurant
		return msgWelcome + "\n\n" + menu, nil
	default:
		return msgHelp, nil
	}
}

func (m *Machine) handleAskRestaurant(ctx context.Context, sess *models.Session, input string) (string, error) {
	restaurants, err := m.store.ListRestaurants(ctx)
	if err != nil {
		return "", err
	}

	var picked *models.Restaurant
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(restaurants) {
		picked = &restaurants[n-1]
	} else {
		for i := range restaurants {
			if strings.EqualFold(restaurants[i].Code, input) {
				picked = &restaurants[i]
				break
			}
		}
	}
	if picked == nil {
		return msgUnknownRestaurant, nil
	}

	sess.RestaurantCode = picked.Code
	sess.State = models.StateAskPartySize
	return fmt.Sprintf(msgAskPartySize, picked.Name), nil
}

func (m *Machine) handleAskPartySize(sess *models.Session, input string) (string, error) {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > 20 {
		return msgBadPartySize, nil
	}
	sess.PartySize = n
	sess.State = models.StateAskDate
	return msgAskDate, nil
}

func (m *Machine) handleAskDate(sess *models.Session, input string) (string, error) {
	date, ok := m.parseDate(input)
	if !ok {
		return msgBadDate, nil
	}
	sess.ServiceDate = date
	sess.State = models.StateAskService
	return msgAskService, nil
}

func (m *Machine) handleAskService(ctx context.Context, sess *models.Session, input string) (string, error) {
	service, ok := parseService(input)
	if !ok {
		return msgBadService, nil
	}
	sess.Service = service
	return m.checkAndPropose(ctx, sess)
}

// checkAndPropose runs check_availability for the slot collected in the
// session and routes to CONFIRM_RESERVATION, ASK_ALT_PICK or back to
// IDLE depending on the result.
func (m *Machine) checkAndPropose(ctx context.Context, sess *models.Session) (string, error) {
	avail, err := m.store.CheckAvailability(ctx, sess.RestaurantCode, sess.ServiceDate, sess.Service, sess.PartySize)
	if err != nil {
		return "", err
	}
	if avail.Available {
		sess.State = models.StateConfirmReservation
		return m.confirmPrompt(sess), nil
	}
	return m.proposeAlternatives(ctx, sess)
}

func (m *Machine) proposeAlternatives(ctx context.Context, sess *models.Session) (string, error) {
	alts, err := m.store.SuggestAlternatives(ctx, sess.RestaurantCode, sess.ServiceDate, sess.Service, sess.PartySize, alternativeDays)
	if err != nil {
		return "", err
	}
	if len(alts) == 0 {
		sess.Reset()
		return msgNoAlternatives, nil
	}
	if len(alts) > maxAlternatives {
		alts = alts[:maxAlternatives]
	}
	sess.Alternatives = alts
	sess.State = models.StateAskAltPick

	var b strings.Builder
	b.WriteString(msgNoAvailabilityIntro + "\n\n")
	for i, a := range alts {
		fmt.Fprintf(&b, "%d. %s — %s (%s), %d lugares\n", i+1, a.RestaurantCode, a.ServiceDate, serviceLabel(a.Service), a.SeatsLeft)
	}
	b.WriteString("\n" + msgAltPickFooter)
	return b.String(), nil
}

func (m *Machine) handleConfirm(ctx context.Context, sess *models.Session, input, profileName string) (string, error) {
	switch input {
	case "si", "sí", "yes", "confirmar", "confirmo", "dale", "ok":
		req := &models.ReservationRequest{
			Restaurant:    sess.RestaurantCode,
			Date:          sess.ServiceDate,
			Service:       sess.Service,
			Party:         sess.PartySize,
			CustomerName:  profileName,
			CustomerPhone: sess.WaID,
		}
		id, err := m.store.CreateReservation(ctx, req)
		if errors.Is(err, store.ErrConflict) {
			// The slot was taken between the check and the insert.
			return m.proposeAlternatives(ctx, sess)
		}
		if err != nil {
			return "", err
		}
		reply := fmt.Sprintf(msgReserved, id, sess.RestaurantCode, sess.ServiceDate, serviceLabel(sess.Service), sess.PartySize)
		sess.Reset()
		return reply, nil
	case "no":
		sess.Reset()
		return msgNotReserved, nil
	default:
		return m.confirmPrompt(sess), nil
	}
}

func (m *Machine) handleAltPick(sess *models.Session, input string) (string, error) {
	if input == "0" || input == "no" || input == "ninguna" || input == "none" {
		sess.Reset()
		return msgNotReserved, nil
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(sess.Alternatives) {
		return msgBadAltPick, nil
	}
	alt := sess.Alternatives[n-1]
	sess.RestaurantCode = alt.RestaurantCode
	sess.ServiceDate = alt.ServiceDate
	sess.Service = alt.Service
	sess.Alternatives = nil
	sess.State = models.StateConfirmReservation
	return m.confirmPrompt(sess), nil
}

func (m *Machine) handleCancelID(ctx context.Context, sess *models.Session, input string) (string, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(input, "#"), 10, 64)
	if err != nil || id <= 0 {
		return msgBadCancelID, nil
	}
	err = m.store.CancelReservation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		sess.Reset()
		return msgCancelNotFound, nil
	}
	if err != nil {
		return "", err
	}
	sess.Reset()
	return fmt.Sprintf(msgCancelled, id), nil
}

func (m *Machine) confirmPrompt(sess *models.Session) string {
	return fmt.Sprintf(msgConfirm, sess.RestaurantCode, sess.ServiceDate, serviceLabel(sess.Service), sess.PartySize)
}

func (m *Machine) restaurantMenu(ctx context.Context) (string, error) {
	restaurants, err := m.store.ListRestaurants(ctx)
	if err != nil {
		return "", err
	}
	if len(restaurants) == 0 {
		return msgNoRestaurants, nil
	}
	var b strings.Builder
	b.WriteString("🍽️ Nuestros restaurantes:\n\n")
	for i, r := range restaurants {
		fmt.Fprintf(&b, "%d. %s (%s) — %s\n", i+1, r.Name, r.Code, r.City)
	}
	b.WriteString("\nRespondé con el número o el código del restaurante.")
	return b.String(), nil
}

// parseDate accepts YYYY-MM-DD plus the shortcuts users actually type.
// Past dates are rejected.
func (m *Machine) parseDate(input string) (string, bool) {
	today := m.now().Truncate(24 * time.Hour)
	switch input {
	case "hoy", "today":
		return today.Format("2006-01-02"), true
	case "mañana", "manana", "tomorrow":
		return today.AddDate(0, 0, 1).Format("2006-01-02"), true
	}
	d, err := time.Parse("2006-01-02", input)
	if err != nil {
		return "", false
	}
	if d.Before(today) {
		return "", false
	}
	return d.Format("2006-01-02"), true
}

func parseService(input string) (string, bool) {
	switch input {
	case "1", "almuerzo", "lunch", "mediodia", "mediodía":
		return models.ServiceLunch, true
	case "2", "cena", "dinner", "noche":
		return models.ServiceDinner, true
	}
	return "", false
}

func serviceLabel(service string) string {
	if service == models.ServiceLunch {
		return "almuerzo"
	}
	return "cena"
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func isGreeting(input string) bool {
	return containsAny(input, "hola", "buenas", "hello", "hi", "menu", "menú", "start", "empezar")
}

func containsAny(input string, words ...string) bool {
	for _, w := range words {
		if input == w || strings.Contains(input, w) {
			return true
		}
	}
	return false
}
