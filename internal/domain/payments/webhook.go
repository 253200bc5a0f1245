package payments

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"
)

// HandleWebhook verifies and records incoming Stripe events. The
// booking lifecycle does not depend on these; they exist for audit and
// for support tooling to reconcile charges against bookings.
func (s *Service) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.config.WebhookSecret == "" {
		http.Error(w, "stripe webhook not configured", http.StatusNotImplemented)
		return
	}

	const MaxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusServiceUnavailable)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), s.config.WebhookSecret)
	if err != nil {
		log.Printf("webhook: signature verification failed: %v", err)
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}

	_, err = s.fs.Collection("stripeEvents").Doc(event.ID).Set(r.Context(), map[string]interface{}{
		"type":       string(event.Type),
		"created":    event.Created,
		"livemode":   event.Livemode,
		"receivedAt": time.Now().UTC(),
	})
	if err != nil {
		log.Printf("webhook: failed to record event %s: %v", event.ID, err)
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"received":true}`))
}
