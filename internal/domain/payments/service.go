package payments

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"github.com/stripe/stripe-go/v76/transfer"

	"courtly/backend/internal/domain/booking"
)

type Config struct {
	SecretKey     string
	WebhookSecret string
}

// Service is the Stripe-backed payment collaborator. It issues the
// charge / payout / refund instructions the booking lifecycle decides
// on; settlement and reconciliation stay on the Stripe side.
//
// Without a secret key the service runs disabled: instructions are
// logged and acknowledged so the booking flow keeps working in
// development.
type Service struct {
	fs      *firestore.Client
	config  Config
	enabled bool
}

func NewService(fs *firestore.Client, cfg Config) *Service {
	if cfg.SecretKey != "" {
		stripe.Key = cfg.SecretKey
	}
	return &Service{fs: fs, config: cfg, enabled: cfg.SecretKey != ""}
}

var _ booking.Payments = (*Service)(nil)

// ChargePlayer creates the payment intent for the player's total
// charge (session price plus booking fee).
func (s *Service) ChargePlayer(ctx context.Context, b *booking.PendingBooking) (string, error) {
	if !s.enabled {
		log.Printf("payments disabled: skipping charge for booking %s", b.ID)
		return "", nil
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(b.Fees.TotalChargeCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String(fmt.Sprintf("Session %s %s-%s", b.Date, b.StartTime, b.EndTime)),
		Metadata: map[string]string{
			"bookingId": b.ID,
			"playerId":  b.PlayerID,
			"trainerId": b.TrainerID,
			"feeType":   string(b.Fees.FeeType),
		},
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		s.recordEvent(ctx, b.ID, "charge_failed", map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}

	s.recordEvent(ctx, b.ID, "charge_created", map[string]interface{}{
		"paymentIntentId": pi.ID,
		"amountCents":     b.Fees.TotalChargeCents,
	})
	return pi.ID, nil
}

// ReleasePayout transfers the trainer's share to their connected
// account. The connected account id lives on the user document,
// written during Stripe onboarding.
func (s *Service) ReleasePayout(ctx context.Context, b *booking.PendingBooking) error {
	if !s.enabled {
		log.Printf("payments disabled: skipping payout for booking %s", b.ID)
		return nil
	}

	userDoc, err := s.fs.Collection("users").Doc(b.TrainerID).Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load trainer %s: %w", b.TrainerID, err)
	}
	accountID, _ := userDoc.Data()["stripeAccountId"].(string)
	if accountID == "" {
		s.recordEvent(ctx, b.ID, "payout_held", map[string]interface{}{
			"reason": "trainer has no connected account",
		})
		return fmt.Errorf("trainer %s has no connected account", b.TrainerID)
	}

	params := &stripe.TransferParams{
		Amount:        stripe.Int64(b.Fees.TrainerPayoutCents),
		Currency:      stripe.String(string(stripe.CurrencyUSD)),
		Destination:   stripe.String(accountID),
		TransferGroup: stripe.String(b.ID),
		Metadata: map[string]string{
			"bookingId": b.ID,
			"feeType":   string(b.Fees.FeeType),
		},
	}

	tr, err := transfer.New(params)
	if err != nil {
		s.recordEvent(ctx, b.ID, "payout_failed", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("failed to create transfer: %w", err)
	}

	s.recordEvent(ctx, b.ID, "payout_released", map[string]interface{}{
		"transferId":  tr.ID,
		"amountCents": b.Fees.TrainerPayoutCents,
	})
	return nil
}

// RefundBooking refunds the player's full charge after a decline.
func (s *Service) RefundBooking(ctx context.Context, b *booking.PendingBooking) error {
	if !s.enabled {
		log.Printf("payments disabled: skipping refund for booking %s", b.ID)
		return nil
	}
	if b.PaymentIntentID == "" {
		s.recordEvent(ctx, b.ID, "refund_skipped", map[string]interface{}{
			"reason": "no payment intent on booking",
		})
		return nil
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(b.PaymentIntentID),
		Metadata: map[string]string{
			"bookingId": b.ID,
		},
	}

	rf, err := refund.New(params)
	if err != nil {
		s.recordEvent(ctx, b.ID, "refund_failed", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("failed to create refund: %w", err)
	}

	s.recordEvent(ctx, b.ID, "refund_issued", map[string]interface{}{
		"refundId": rf.ID,
	})
	return nil
}

// recordEvent appends an audit document; failures only log.
func (s *Service) recordEvent(ctx context.Context, bookingID, kind string, data map[string]interface{}) {
	if s.fs == nil {
		return
	}
	doc := map[string]interface{}{
		"bookingId": bookingID,
		"type":      kind,
		"createdAt": time.Now().UTC(),
	}
	for k, v := range data {
		doc[k] = v
	}
	if _, _, err := s.fs.Collection("paymentEvents").Add(ctx, doc); err != nil {
		log.Printf("payments: failed to record %s event for booking %s: %v", kind, bookingID, err)
	}
}
