package booking

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"courtly/backend/internal/domain/fees"
	"courtly/backend/internal/domain/relationship"
)

// Payments receives charge/payout/refund instructions. Settlement and
// reconciliation live with the payment provider, not here.
type Payments interface {
	ChargePlayer(ctx context.Context, b *PendingBooking) (intentID string, err error)
	ReleasePayout(ctx context.Context, b *PendingBooking) error
	RefundBooking(ctx context.Context, b *PendingBooking) error
}

// Notifier delivers booking events to the player and the owner.
type Notifier interface {
	BookingCreated(ctx context.Context, b *PendingBooking) error
	BookingConfirmed(ctx context.Context, b *PendingBooking, auto bool) error
	BookingDeclined(ctx context.Context, b *PendingBooking, reason string) error
}

// Service owns the booking lifecycle. It is the only writer of booking
// status; the relationship store and collaborators are invoked as side
// effects of transitions.
type Service struct {
	store    Store
	rels     relationship.Store
	payments Payments
	notify   Notifier

	// window is the default response window applied when the creation
	// request does not carry its own.
	window time.Duration
	nowFn  func() time.Time
}

func NewService(store Store, rels relationship.Store, payments Payments, notify Notifier, window time.Duration) *Service {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &Service{
		store:    store,
		rels:     rels,
		payments: payments,
		notify:   notify,
		window:   window,
		nowFn:    time.Now,
	}
}

// Create freezes the fee breakdown for the pair's current tier and
// persists the booking in pending with its response deadline. Later
// relationship changes never alter this booking's charge.
func (s *Service) Create(ctx context.Context, playerID string, in CreateInput) (*PendingBooking, error) {
	in.Trim()

	if strings.TrimSpace(playerID) == "" {
		return nil, fmt.Errorf("%w: playerId is required", ErrBadRequest)
	}
	if in.TrainerID == "" {
		return nil, fmt.Errorf("%w: trainerId is required", ErrBadRequest)
	}
	if in.Date == "" || in.StartTime == "" || in.EndTime == "" {
		return nil, fmt.Errorf("%w: date, startTime and endTime are required", ErrBadRequest)
	}
	if in.PriceCents <= 0 {
		return nil, fmt.Errorf("%w: priceCents must be positive", ErrBadRequest)
	}

	// A store failure here fails the booking outright. Defaulting to
	// some tier on error would misprice the session.
	rel, err := s.rels.Get(ctx, in.TrainerID, playerID)
	if err != nil && !relationship.IsErrNotFound(err) {
		return nil, err
	}

	calc, err := fees.Calculate(in.PriceCents, fees.ResolveTier(rel))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	window := s.window
	if in.ResponseWindowMinutes > 0 {
		window = time.Duration(in.ResponseWindowMinutes) * time.Minute
	}
	now := s.nowFn().UTC()

	b := PendingBooking{
		PlayerID:    playerID,
		TrainerID:   in.TrainerID,
		CourtID:     in.CourtID,
		Date:        in.Date,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		PriceCents:  in.PriceCents,
		Fees:        calc,
		Status:      StatusPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(window),
		PlayerName:  in.PlayerName,
		PlayerEmail: in.PlayerEmail,
		PlayerPhone: in.PlayerPhone,
	}

	created, err := s.store.Create(ctx, b)
	if err != nil {
		return nil, err
	}

	if _, err := s.rels.RecordMarketplaceBooking(ctx, in.TrainerID, playerID, created.ID, relationship.ContactInfo{
		Name:  in.PlayerName,
		Email: in.PlayerEmail,
		Phone: in.PlayerPhone,
	}); err != nil {
		log.Printf("booking %s: failed to record relationship: %v", created.ID, err)
	}

	if s.payments != nil {
		intentID, err := s.payments.ChargePlayer(ctx, created)
		if err != nil {
			log.Printf("booking %s: charge instruction failed: %v", created.ID, err)
		} else if intentID != "" {
			created.PaymentIntentID = intentID
			if err := s.store.SetPaymentIntent(ctx, created.ID, intentID); err != nil {
				log.Printf("booking %s: failed to save payment intent: %v", created.ID, err)
			}
		}
	}

	if s.notify != nil {
		if err := s.notify.BookingCreated(ctx, created); err != nil {
			log.Printf("booking %s: created notification failed: %v", created.ID, err)
		}
	}

	return created, nil
}

func (s *Service) Get(ctx context.Context, callerUID, id string) (*PendingBooking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.PlayerID != callerUID && b.TrainerID != callerUID {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	return b, nil
}

// Confirm is the owner accepting a pending booking. Exactly one of
// Confirm / Decline / SweepExpire wins; the losers see
// ErrInvalidTransition, surfaced to the owner as "already responded".
func (s *Service) Confirm(ctx context.Context, ownerID, id string) (*PendingBooking, error) {
	b, err := s.ownedPending(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	resolved, err := s.store.Resolve(ctx, b.ID, StatusConfirmed, ResolvedByOwner, "", s.nowFn().UTC())
	if err != nil {
		return nil, err
	}

	s.finalizeConfirm(ctx, resolved, false)
	return resolved, nil
}

// Decline turns the booking down and instructs a refund of the full
// player charge. The reason is relayed verbatim to the player.
func (s *Service) Decline(ctx context.Context, ownerID, id, reason string) (*PendingBooking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: a decline reason is required", ErrBadRequest)
	}

	b, err := s.ownedPending(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	resolved, err := s.store.Resolve(ctx, b.ID, StatusDeclined, ResolvedByOwner, reason, s.nowFn().UTC())
	if err != nil {
		return nil, err
	}

	if s.notify != nil {
		if err := s.notify.BookingDeclined(ctx, resolved, reason); err != nil {
			log.Printf("booking %s: declined notification failed: %v", resolved.ID, err)
		}
	}

	if s.payments != nil {
		if err := s.payments.RefundBooking(ctx, resolved); err != nil {
			// The decline stands; the refund needs operator attention.
			return resolved, fmt.Errorf("%w: refund for booking %s: %v", ErrPaymentFailed, resolved.ID, err)
		}
	}

	return resolved, nil
}

// SweepExpire force-confirms a booking whose response window elapsed.
// Functionally equivalent to Confirm, but system-initiated and flagged
// so notifications read "Auto-confirmed".
func (s *Service) SweepExpire(ctx context.Context, id string, now time.Time) (*PendingBooking, error) {
	resolved, err := s.store.Resolve(ctx, id, StatusExpiredConfirmed, ResolvedBySystem, "", now.UTC())
	if err != nil {
		return nil, err
	}

	s.finalizeConfirm(ctx, resolved, true)
	return resolved, nil
}

// SweepExpiredBookings resolves every overdue pending booking. Each
// booking is processed independently: one failure is logged and
// skipped, never aborting the batch. Returns how many were resolved.
func (s *Service) SweepExpiredBookings(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.store.ListExpired(ctx, now, 200)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, b := range overdue {
		if _, err := s.SweepExpire(ctx, b.ID, now); err != nil {
			// Someone resolved it between the query and the sweep.
			if IsErrInvalidTransition(err) || IsErrNotExpired(err) {
				continue
			}
			log.Printf("sweep: booking %s: %v", b.ID, err)
			continue
		}
		resolved++
	}
	return resolved, nil
}

// finalizeConfirm runs the side effects shared by manual and automatic
// confirmation: payout release, the one-time repeat flip when the
// pair's first marketplace booking completes, and notifications. All
// best-effort; the transition itself already committed.
func (s *Service) finalizeConfirm(ctx context.Context, b *PendingBooking, auto bool) {
	if s.payments != nil {
		if err := s.payments.ReleasePayout(ctx, b); err != nil {
			log.Printf("booking %s: payout instruction failed: %v", b.ID, err)
		}
	}

	rel, err := s.rels.Get(ctx, b.TrainerID, b.PlayerID)
	if err != nil {
		if !relationship.IsErrNotFound(err) {
			log.Printf("booking %s: relationship lookup failed: %v", b.ID, err)
		}
	} else if rel.Source == relationship.SourceMarketplace && !rel.IsRepeat {
		if err := s.rels.MarkAsRepeatClient(ctx, b.TrainerID, b.PlayerID); err != nil {
			log.Printf("booking %s: failed to mark repeat client: %v", b.ID, err)
		}
	}

	if s.notify != nil {
		if err := s.notify.BookingConfirmed(ctx, b, auto); err != nil {
			log.Printf("booking %s: confirmed notification failed: %v", b.ID, err)
		}
	}
}

func (s *Service) ownedPending(ctx context.Context, ownerID, id string) (*PendingBooking, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: bookingId is required", ErrBadRequest)
	}
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.TrainerID != ownerID {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	return b, nil
}
