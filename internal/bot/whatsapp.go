package bot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Sender is the outbound side of the conversation. Satisfied by
// *WhatsAppBot; handlers accept the interface so tests can fake it.
type Sender interface {
	SendTextMessage(to, message string) error
}

type WhatsAppBot struct {
	token         string
	phoneNumberID string
	baseURL       string
	client        *http.Client
}

type TextMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

func NewWhatsAppBot(token, phoneNumberID string) *WhatsAppBot {
	return &WhatsAppBot{
		token:         token,
		phoneNumberID: phoneNumberID,
		baseURL:       "https://graph.facebook.com/v22.0",
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

// SendTextMessage sends a plain text message to a WhatsApp user.
func (w *WhatsAppBot) SendTextMessage(to, message string) error {
	msg := TextMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
	}
	msg.Text.Body = message

	return w.sendMessage(msg)
}

// sendMessage posts a message payload to the WhatsApp Cloud API.
func (w *WhatsAppBot) sendMessage(message interface{}) error {
	url := fmt.Sprintf("%s/%s/messages", w.baseURL, w.phoneNumberID)

	jsonData, err := json.Marshal(message)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+w.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		logrus.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"response":    string(body),
		}).Error("Failed to send WhatsApp message")
		return fmt.Errorf("failed to send message, status: %d", resp.StatusCode)
	}

	logrus.Debug("WhatsApp message sent successfully")
	return nil
}
