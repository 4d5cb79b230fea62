package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/lucasviilaa/whatsapp-reservas-backend/internal/bot"
	"github.com/lucasviilaa/whatsapp-reservas-backend/internal/config"
	"github.com/lucasviilaa/whatsapp-reservas-backend/internal/conversation"
	"github.com/lucasviilaa/whatsapp-reservas-backend/internal/database"
	"github.com/lucasviilaa/whatsapp-reservas-backend/internal/handlers"
	"github.com/lucasviilaa/whatsapp-reservas-backend/internal/store"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using system environment variables")
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
}

func main() {
	cfg := config.Load()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Disconnect()

	// Wire services
	st := store.NewSQLStore(db)
	whatsappBot := bot.NewWhatsAppBot(cfg.WhatsAppToken, cfg.PhoneNumberID)
	machine := conversation.New(st)

	apiHandler := handlers.NewAPIHandler(st)
	webhookHandler := handlers.NewWebhookHandler(whatsappBot, machine, cfg.VerifyToken, cfg.AppSecret)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	// REST surface
	router.GET("/health", apiHandler.Health)
	router.GET("/restaurants", apiHandler.GetRestaurants)
	router.GET("/availability", apiHandler.GetAvailability)
	router.GET("/alternatives", apiHandler.GetAlternatives)
	router.POST("/reserve", apiHandler.PostReserve)
	router.POST("/cancel", apiHandler.PostCancel)

	// WhatsApp webhook
	router.GET(cfg.WebhookEndpoint, webhookHandler.VerifyWebhook)
	router.POST(cfg.WebhookEndpoint, webhookHandler.HandleWebhook)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logrus.WithField("port", cfg.Port).Info("Starting reservation bot server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Forced shutdown")
	}
}

// requestLogger tags every request with an id and logs it on completion.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		start := time.Now()

		c.Next()

		logrus.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		}).Info("Request handled")
	}
}
