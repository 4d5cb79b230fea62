package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lucasviilaa/whatsapp-reservas-backend/internal/models"
	"github.com/lucasviilaa/whatsapp-reservas-backend/internal/store"
)

// APIHandler serves the REST surface in front of the stored procedures.
type APIHandler struct {
	store store.Store
}

func NewAPIHandler(st store.Store) *APIHandler {
	return &APIHandler{store: st}
}

// Health reports liveness and whether the backend answers a ping.
func (h *APIHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "up"
	if err := h.store.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("Health check: database ping failed")
		dbStatus = "down"
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "db": dbStatus})
}

// GetRestaurants lists the restaurants available for booking.
func (h *APIHandler) GetRestaurants(c *gin.Context) {
	restaurants, err := h.store.ListRestaurants(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to list restaurants")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list restaurants"})
		return
	}
	if restaurants == nil {
		restaurants = []models.Restaurant{}
	}
	c.JSON(http.StatusOK, restaurants)
}

// GetAvailability forwards to the check_availability procedure.
func (h *APIHandler) GetAvailability(c *gin.Context) {
	restaurant, date, service, party, ok := slotParams(c)
	if !ok {
		return
	}

	avail, err := h.store.CheckAvailability(c.Request.Context(), restaurant, date, service, party)
	if err != nil {
		logrus.WithError(err).Error("Availability check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "availability check failed"})
		return
	}
	c.JSON(http.StatusOK, avail)
}

// GetAlternatives forwards to the suggest_alternatives procedure.
func (h *APIHandler) GetAlternatives(c *gin.Context) {
	restaurant, date, service, party, ok := slotParams(c)
	if !ok {
		return
	}

	days := 3
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 14 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "days must be an integer between 1 and 14"})
			return
		}
		days = n
	}

	alts, err := h.store.SuggestAlternatives(c.Request.Context(), restaurant, date, service, party, days)
	if err != nil {
		logrus.WithError(err).Error("Alternative search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "alternative search failed"})
		return
	}
	if alts == nil {
		alts = []models.Alternative{}
	}
	c.JSON(http.StatusOK, alts)
}

// PostReserve creates a reservation through the create_reservation
// procedure. A taken slot yields 409.
func (h *APIHandler) PostReserve(c *gin.Context) {
	var req models.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body"})
		return
	}
	if msg, ok := validateReservation(&req); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
		return
	}

	id, err := h.store.CreateReservation(c.Request.Context(), &req)
	if errors.Is(err, store.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"message": "no tables left for that slot"})
		return
	}
	if err != nil {
		logrus.WithError(err).Error("Reservation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "reservation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation_id": id})
}

// PostCancel cancels a reservation by id.
func (h *APIHandler) PostCancel(c *gin.Context) {
	var req models.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ReservationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "reservation_id must be a positive integer"})
		return
	}

	err := h.store.CancelReservation(c.Request.Context(), req.ReservationID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "reservation not found"})
		return
	}
	if err != nil {
		logrus.WithError(err).Error("Cancellation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "cancellation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

// slotParams validates the query-string form of a slot. It writes the
// 400 response itself so callers just bail on !ok.
func slotParams(c *gin.Context) (restaurant, date, service string, party int, ok bool) {
	restaurant = c.Query("restaurant")
	if restaurant == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "restaurant is required"})
		return
	}
	date = c.Query("date")
	if !validDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "date must be YYYY-MM-DD"})
		return
	}
	service = c.Query("service")
	if !validService(service) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "service must be lunch or dinner"})
		return
	}
	n, err := strconv.Atoi(c.Query("party"))
	if err != nil || n < 1 || n > 20 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "party must be an integer between 1 and 20"})
		return
	}
	return restaurant, date, service, n, true
}

func validateReservation(req *models.ReservationRequest) (string, bool) {
	switch {
	case req.Restaurant == "":
		return "restaurant is required", false
	case !validDate(req.Date):
		return "date must be YYYY-MM-DD", false
	case !validService(req.Service):
		return "service must be lunch or dinner", false
	case req.Party < 1 || req.Party > 20:
		return "party must be an integer between 1 and 20", false
	case req.CustomerName == "":
		return "customer_name is required", false
	case req.CustomerPhone == "":
		return "customer_phone is required", false
	}
	return "", true
}

func validDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

func validService(service string) bool {
	return service == models.ServiceLunch || service == models.ServiceDinner
}
