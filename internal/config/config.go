package config

import (
	"os"
)

type Config struct {
	WhatsAppToken   string
	PhoneNumberID   string
	VerifyToken     string
	AppSecret       string
	DatabaseURL     string
	Port            string
	WebhookEndpoint string
	LogLevel        string
}

func Load() *Config {
	return &Config{
		WhatsAppToken:   getEnv("WHATSAPP_TOKEN", ""),
		PhoneNumberID:   getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		VerifyToken:     getEnv("WEBHOOK_VERIFY_TOKEN", ""),
		AppSecret:       getEnv("WHATSAPP_APP_SECRET", ""),
		DatabaseURL:     getEnv("DATABASE_URL", "postgres://localhost:5432/reservas?sslmode=disable"),
		Port:            getEnv("PORT", "8080"),
		WebhookEndpoint: getEnv("WEBHOOK_ENDPOINT", "/webhook"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
