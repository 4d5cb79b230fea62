package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lucasviilaa/whatsapp-reservas-backend/internal/bot"
	"github.com/lucasviilaa/whatsapp-reservas-backend/internal/conversation"
	"github.com/lucasviilaa/whatsapp-reservas-backend/internal/models"
)

// WebhookHandler receives WhatsApp Cloud API callbacks and feeds text
// messages into the conversation machine.
type WebhookHandler struct {
	sender      bot.Sender
	machine     *conversation.Machine
	verifyToken string
	appSecret   string
}

func NewWebhookHandler(sender bot.Sender, machine *conversation.Machine, verifyToken, appSecret string) *WebhookHandler {
	return &WebhookHandler{
		sender:      sender,
		machine:     machine,
		verifyToken: verifyToken,
		appSecret:   appSecret,
	}
}

// VerifyWebhook handles Meta's subscription handshake.
func (h *WebhookHandler) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		logrus.Info("Webhook verified successfully")
		c.String(http.StatusOK, challenge)
		return
	}

	logrus.WithField("mode", mode).Warn("Webhook verification failed")
	c.Status(http.StatusForbidden)
}

// HandleWebhook processes inbound messages. It always answers 200 once
// the request is authentic: the provider redelivers on any other status,
// and a payload we cannot process now will not process better later.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		logrus.WithError(err).Error("Failed to read webhook body")
		c.Status(http.StatusOK)
		return
	}

	if h.appSecret != "" && !h.validSignature(c.GetHeader("X-Hub-Signature-256"), body) {
		logrus.Warn("Webhook signature mismatch")
		c.Status(http.StatusForbidden)
		return
	}

	var payload models.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logrus.WithError(err).Error("Failed to parse webhook payload")
		c.Status(http.StatusOK)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, status := range change.Value.Statuses {
				logrus.WithFields(logrus.Fields{
					"message_id": status.ID,
					"status":     status.Status,
				}).Debug("Delivery status update")
			}
			for _, message := range change.Value.Messages {
				h.handleMessage(c, change.Value.Contacts, message)
			}
		}
	}

	c.Status(http.StatusOK)
}

func (h *WebhookHandler) handleMessage(c *gin.Context, contacts []models.Contact, message models.Message) {
	if message.Type != "text" || message.Text == nil {
		logrus.WithFields(logrus.Fields{
			"from": message.From,
			"type": message.Type,
		}).Info("Skipping non-text message")
		return
	}

	name := models.ContactName(contacts, message.From)
	reply, err := h.machine.Handle(c.Request.Context(), message.From, name, message.Text.Body)
	if err != nil {
		logrus.WithError(err).WithField("wa_id", message.From).Error("Conversation step failed")
	}
	if reply == "" {
		return
	}
	if err := h.sender.SendTextMessage(message.From, reply); err != nil {
		logrus.WithError(err).WithField("wa_id", message.From).Error("Failed to send reply")
	}
}

// validSignature checks Meta's X-Hub-Signature-256 header
// ("sha256=<hex>") against the app secret.
func (h *WebhookHandler) validSignature(header string, body []byte) bool {
	sig, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	want, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.appSecret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), want)
}
