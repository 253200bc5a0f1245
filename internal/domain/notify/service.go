package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/messaging"

	"courtly/backend/internal/domain/booking"
)

// Notification is one entry in a user's notification feed.
type Notification struct {
	ID        string    `firestore:"-" json:"id"`
	Type      string    `firestore:"type" json:"type"`
	Title     string    `firestore:"title" json:"title"`
	Body      string    `firestore:"body,omitempty" json:"body,omitempty"`
	BookingID string    `firestore:"bookingId,omitempty" json:"bookingId,omitempty"`
	Read      bool      `firestore:"read" json:"read"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
}

// Service delivers booking events: a feed document per recipient, plus
// an FCM push when the recipient has a registered device token.
type Service struct {
	client    *firestore.Client
	messaging *messaging.Client // nil when push is unavailable
}

func NewService(client *firestore.Client, msg *messaging.Client) *Service {
	return &Service{client: client, messaging: msg}
}

var _ booking.Notifier = (*Service)(nil)

func (s *Service) notificationsCol(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("notifications")
}

func (s *Service) BookingCreated(ctx context.Context, b *booking.PendingBooking) error {
	title := "New booking request"
	body := fmt.Sprintf("%s %s-%s. Respond before %s or it confirms automatically.",
		b.Date, b.StartTime, b.EndTime, b.ExpiresAt.Format("15:04 MST"))
	return s.deliver(ctx, b.TrainerID, "booking_created", title, body, b.ID)
}

func (s *Service) BookingConfirmed(ctx context.Context, b *booking.PendingBooking, auto bool) error {
	title := "Booking confirmed"
	body := fmt.Sprintf("Your session on %s at %s is confirmed.", b.Date, b.StartTime)
	if auto {
		// A timed-out booking reads as a confirmation, never an error.
		title = "Booking auto-confirmed"
		body = fmt.Sprintf("Your session on %s at %s was auto-confirmed.", b.Date, b.StartTime)
	}

	if err := s.deliver(ctx, b.PlayerID, "booking_confirmed", title, body, b.ID); err != nil {
		return err
	}
	if auto {
		ownerBody := fmt.Sprintf("The request for %s at %s was auto-confirmed after the response window closed.", b.Date, b.StartTime)
		return s.deliver(ctx, b.TrainerID, "booking_confirmed", "Booking auto-confirmed", ownerBody, b.ID)
	}
	return nil
}

func (s *Service) BookingDeclined(ctx context.Context, b *booking.PendingBooking, reason string) error {
	title := "Booking declined"
	body := fmt.Sprintf("Your session on %s at %s was declined: %s. Your payment will be refunded.", b.Date, b.StartTime, reason)
	return s.deliver(ctx, b.PlayerID, "booking_declined", title, body, b.ID)
}

func (s *Service) deliver(ctx context.Context, uid, kind, title, body, bookingID string) error {
	n := Notification{
		Type:      kind,
		Title:     title,
		Body:      body,
		BookingID: bookingID,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}

	if _, _, err := s.notificationsCol(uid).Add(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification for %s: %w", uid, err)
	}

	s.push(ctx, uid, title, body, bookingID)
	return nil
}

// push is best-effort: a stale or missing device token never fails the
// notification.
func (s *Service) push(ctx context.Context, uid, title, body, bookingID string) {
	if s.messaging == nil {
		return
	}

	userDoc, err := s.client.Collection("users").Doc(uid).Get(ctx)
	if err != nil {
		return
	}
	token, _ := userDoc.Data()["fcmToken"].(string)
	if token == "" {
		return
	}

	_, err = s.messaging.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"bookingId": bookingID,
		},
	})
	if err != nil {
		log.Printf("notify: push to %s failed: %v", uid, err)
	}
}
