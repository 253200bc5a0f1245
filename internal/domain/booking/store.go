package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Store persists pending bookings. Resolve is the only way a status
// changes: it performs a conditional "pending -> terminal" transition
// so that a manual confirm/decline and the expiry sweep can race and
// exactly one wins.
type Store interface {
	Create(ctx context.Context, b PendingBooking) (*PendingBooking, error)
	Get(ctx context.Context, id string) (*PendingBooking, error)
	Resolve(ctx context.Context, id string, to Status, resolvedBy, declineReason string, now time.Time) (*PendingBooking, error)
	SetPaymentIntent(ctx context.Context, id, intentID string) error
	ListExpired(ctx context.Context, now time.Time, limit int) ([]PendingBooking, error)
}

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

var _ Store = (*Repo)(nil)

func (r *Repo) col() *firestore.CollectionRef {
	return r.fs.Collection("pendingBookings")
}

func (r *Repo) Create(ctx context.Context, b PendingBooking) (*PendingBooking, error) {
	ref := r.col().NewDoc()
	b.ID = ref.ID

	if _, err := ref.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("%w: failed to create booking: %v", ErrStoreUnavailable, err)
	}
	return &b, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*PendingBooking, error) {
	doc, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var b PendingBooking
	if err := doc.DataTo(&b); err != nil {
		return nil, fmt.Errorf("failed to parse booking: %w", err)
	}
	b.ID = doc.Ref.ID
	return &b, nil
}

// Resolve transitions a booking out of pending. The guard runs inside
// a transaction: the status is re-read and the write only happens if it
// is still pending, so concurrent resolvers cannot both win. The sweep
// additionally may not fire before the response deadline.
func (r *Repo) Resolve(ctx context.Context, id string, to Status, resolvedBy, declineReason string, now time.Time) (*PendingBooking, error) {
	if !to.Terminal() {
		return nil, fmt.Errorf("%w: %q is not a terminal status", ErrBadRequest, to)
	}
	ref := r.col().Doc(id)

	var resolved PendingBooking
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("%w: booking %s", ErrNotFound, id)
			}
			return err
		}

		var b PendingBooking
		if err := doc.DataTo(&b); err != nil {
			return fmt.Errorf("failed to parse booking: %w", err)
		}
		b.ID = doc.Ref.ID

		if b.Status != StatusPending {
			return fmt.Errorf("%w: booking %s is %s", ErrInvalidTransition, id, b.Status)
		}
		if to == StatusExpiredConfirmed && now.Before(b.ExpiresAt) {
			return fmt.Errorf("%w: booking %s expires at %s", ErrNotExpired, id, b.ExpiresAt.Format(time.RFC3339))
		}

		b.Status = to
		b.ResolvedAt = &now
		b.ResolvedBy = resolvedBy
		b.DeclineReason = declineReason
		resolved = b

		updates := map[string]interface{}{
			"status":     string(to),
			"resolvedAt": now,
			"resolvedBy": resolvedBy,
		}
		if declineReason != "" {
			updates["declineReason"] = declineReason
		}
		return tx.Set(ref, updates, firestore.MergeAll)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrNotExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to resolve booking: %v", ErrStoreUnavailable, err)
	}
	return &resolved, nil
}

// SetPaymentIntent records the charge reference on the booking. This is
// audit metadata, not a lifecycle transition.
func (r *Repo) SetPaymentIntent(ctx context.Context, id, intentID string) error {
	_, err := r.col().Doc(id).Set(ctx, map[string]interface{}{
		"paymentIntentId": intentID,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("%w: failed to set payment intent: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ListExpired returns pending bookings whose response deadline has
// passed. The deadline lives on the document, so a process restart
// just means the next sweep finds the same overdue bookings.
func (r *Repo) ListExpired(ctx context.Context, now time.Time, limit int) ([]PendingBooking, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	iter := r.col().
		Where("status", "==", string(StatusPending)).
		Where("expiresAt", "<=", now).
		OrderBy("expiresAt", firestore.Asc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var out []PendingBooking
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to list expired bookings: %v", ErrStoreUnavailable, err)
		}

		var b PendingBooking
		if err := doc.DataTo(&b); err != nil {
			continue
		}
		b.ID = doc.Ref.ID
		out = append(out, b)
	}
	return out, nil
}
