package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ProjectID           string
	Port                string
	AllowedOrigins      []string
	StripeSecretKey     string
	StripeWebhookSecret string

	// ResponseWindow is how long a facility owner has to respond to a
	// pending booking before the sweep auto-confirms it.
	ResponseWindow time.Duration
	SweepInterval  time.Duration
}

func Load() Config {
	// FIREBASE_PROJECT_ID または GOOGLE_CLOUD_PROJECT を読む
	projectID := getenv("FIREBASE_PROJECT_ID", "")
	if projectID == "" {
		projectID = getenv("GOOGLE_CLOUD_PROJECT", "")
	}

	port := getenv("PORT", "8080")
	origins := getenv("ALLOWED_ORIGINS", "http://localhost:3000")
	stripeSecretKey := getenv("STRIPE_SECRET_KEY", "")
	stripeWebhookSecret := getenv("STRIPE_WEBHOOK_SECRET", "")

	windowMinutes := getenvInt("BOOKING_RESPONSE_WINDOW_MINUTES", 15)
	sweepSeconds := getenvInt("BOOKING_SWEEP_INTERVAL_SECONDS", 30)

	allowed := []string{}
	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			allowed = append(allowed, o)
		}
	}

	return Config{
		ProjectID:           projectID,
		Port:                port,
		AllowedOrigins:      allowed,
		StripeSecretKey:     stripeSecretKey,
		StripeWebhookSecret: stripeWebhookSecret,
		ResponseWindow:      time.Duration(windowMinutes) * time.Minute,
		SweepInterval:       time.Duration(sweepSeconds) * time.Second,
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
