package models

import (
	"time"
)

// Conversation states for the reservation flow. Stored verbatim in the
// sessions table, so renaming one is a data migration.
const (
	StateIdle               = "IDLE"
	StateAskRestaurant      = "ASK_RESTAURANT"
	StateAskPartySize       = "ASK_PARTY_SIZE"
	StateAskDate            = "ASK_DATE"
	StateAskService         = "ASK_SERVICE"
	StateConfirmReservation = "CONFIRM_RESERVATION"
	StateAskAltPick         = "ASK_ALT_PICK"
	StateAskCancelID        = "ASK_CANCEL_ID"
)

// Service names accepted by the stored procedures.
const (
	ServiceLunch  = "lunch"
	ServiceDinner = "dinner"
)

// Restaurant is one row of the restaurants table.
type Restaurant struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	City  string `json:"city"`
	Phone string `json:"phone"`
}

// Availability is the result of the check_availability procedure.
type Availability struct {
	Available bool   `json:"available"`
	SeatsLeft int    `json:"seats_left"`
	Message   string `json:"message,omitempty"`
}

// Alternative is one slot returned by the suggest_alternatives procedure.
type Alternative struct {
	RestaurantCode string `json:"restaurant_code"`
	ServiceDate    string `json:"service_date"`
	Service        string `json:"service"`
	SeatsLeft      int    `json:"seats_left"`
}

// ReservationRequest is the POST /reserve body and the argument set of
// the create_reservation procedure.
type ReservationRequest struct {
	Restaurant    string `json:"restaurant"`
	Date          string `json:"date"`
	Service       string `json:"service"`
	Party         int    `json:"party"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

// CancelRequest is the POST /cancel body.
type CancelRequest struct {
	ReservationID int64 `json:"reservation_id"`
}

// Session is the per-user conversational state record, keyed by wa_id.
// Writes are last-write-wins upserts; there is no cross-message locking.
type Session struct {
	WaID           string        `json:"wa_id"`
	State          string        `json:"state"`
	RestaurantCode string        `json:"restaurant_code,omitempty"`
	PartySize      int           `json:"party_size,omitempty"`
	ServiceDate    string        `json:"service_date,omitempty"`
	Service        string        `json:"service,omitempty"`
	Alternatives   []Alternative `json:"alternatives,omitempty"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// NewSession returns a fresh IDLE session for a WhatsApp user.
func NewSession(waID string) *Session {
	return &Session{WaID: waID, State: StateIdle}
}

// Reset wipes everything collected during the flow and returns to IDLE.
func (s *Session) Reset() {
	s.State = StateIdle
	s.RestaurantCode = ""
	s.PartySize = 0
	s.ServiceDate = ""
	s.Service = ""
	s.Alternatives = nil
}

// WebhookPayload is the WhatsApp Cloud API webhook envelope (v22.0).
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Value ChangeValue `json:"value"`
	Field string      `json:"field"`
}

type ChangeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
	Profile Profile `json:"profile"`
	WaID    string  `json:"wa_id"`
}

type Profile struct {
	Name string `json:"name"`
}

type Message struct {
	From      string       `json:"from"`
	ID        string       `json:"id"`
	Timestamp string       `json:"timestamp"`
	Type      string       `json:"type"`
	Text      *TextContent `json:"text,omitempty"`
}

type TextContent struct {
	Body string `json:"body"`
}

// Status is a delivery status notification. The bot only logs these.
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// ContactName returns the profile name reported for a wa_id, or the
// wa_id itself when the webhook carried no matching contact.
func ContactName(contacts []Contact, waID string) string {
	for _, c := range contacts {
		if c.WaID == waID && c.Profile.Name != "" {
			return c.Profile.Name
		}
	}
	return waID
}
