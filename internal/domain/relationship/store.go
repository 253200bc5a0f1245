package relationship

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"courtly/backend/internal/utils"
)

// Store is the durable record of trainer/client relationships. The
// booking and fee services depend on this interface so tests can swap
// in fakes.
type Store interface {
	Get(ctx context.Context, trainerID, clientID string) (*ClientRelationship, error)
	RecordMarketplaceBooking(ctx context.Context, trainerID, clientID, bookingID string, contact ContactInfo) (*ClientRelationship, error)
	MarkAsRepeatClient(ctx context.Context, trainerID, clientID string) error
	MarkAsExistingClient(ctx context.Context, trainerID, clientID string, contact ContactInfo) (*ClientRelationship, error)
	FindExistingByContact(ctx context.Context, trainerID, email, name string) (bool, error)
}

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

var _ Store = (*Repo)(nil)

func (r *Repo) col() *firestore.CollectionRef {
	return r.fs.Collection("relationships")
}

func (r *Repo) Get(ctx context.Context, trainerID, clientID string) (*ClientRelationship, error) {
	doc, err := r.col().Doc(DocID(trainerID, clientID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: relationship %s", ErrNotFound, DocID(trainerID, clientID))
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var rel ClientRelationship
	if err := doc.DataTo(&rel); err != nil {
		return nil, fmt.Errorf("failed to parse relationship: %w", err)
	}
	rel.TrainerID = trainerID
	rel.ClientID = clientID
	return &rel, nil
}

// RecordMarketplaceBooking upserts the relationship for a marketplace
// booking. First booking for the pair creates the document; later ones
// increment totalBookings and refresh contact info. isRepeat is never
// touched here - only completion of the first booking flips it.
func (r *Repo) RecordMarketplaceBooking(ctx context.Context, trainerID, clientID, bookingID string, contact ContactInfo) (*ClientRelationship, error) {
	contact.Trim()
	ref := r.col().Doc(DocID(trainerID, clientID))
	now := time.Now().UTC()

	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		if err != nil || !doc.Exists() {
			rel := ClientRelationship{
				TrainerID:                   trainerID,
				ClientID:                    clientID,
				Source:                      SourceMarketplace,
				IsRepeat:                    false,
				FirstMarketplaceBookingID:   bookingID,
				FirstMarketplaceBookingDate: &now,
				TotalBookings:               1,
				ClientName:                  contact.Name,
				ClientNameNormalized:        utils.NormalizeNameLower(contact.Name),
				ClientEmail:                 contact.Email,
				ClientEmailLower:            utils.NormalizeEmail(contact.Email),
				ClientPhone:                 contact.Phone,
				CreatedAt:                   now,
				UpdatedAt:                   now,
			}
			return tx.Create(ref, rel)
		}

		updates := map[string]interface{}{
			"totalBookings": firestore.Increment(1),
			"updatedAt":     now,
		}
		if contact.Name != "" {
			updates["clientName"] = contact.Name
			updates["clientNameNormalized"] = utils.NormalizeNameLower(contact.Name)
		}
		if contact.Email != "" {
			updates["clientEmail"] = contact.Email
			updates["clientEmailLower"] = utils.NormalizeEmail(contact.Email)
		}
		if contact.Phone != "" {
			updates["clientPhone"] = contact.Phone
		}
		return tx.Set(ref, updates, firestore.MergeAll)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to record marketplace booking: %v", ErrStoreUnavailable, err)
	}

	return r.Get(ctx, trainerID, clientID)
}

// MarkAsRepeatClient flips isRepeat to true. The flip is monotonic and
// only meaningful for marketplace relationships; existing-source rows
// are left untouched (their tier is already the best one).
func (r *Repo) MarkAsRepeatClient(ctx context.Context, trainerID, clientID string) error {
	ref := r.col().Doc(DocID(trainerID, clientID))

	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}

		var rel ClientRelationship
		if err := doc.DataTo(&rel); err != nil {
			return err
		}
		if rel.Source == SourceExisting || rel.IsRepeat {
			return nil
		}

		return tx.Set(ref, map[string]interface{}{
			"isRepeat":  true,
			"updatedAt": time.Now().UTC(),
		}, firestore.MergeAll)
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: relationship %s", ErrNotFound, DocID(trainerID, clientID))
		}
		return fmt.Errorf("%w: failed to mark repeat client: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// MarkAsExistingClient registers a client the trainer already had
// before the marketplace. Idempotent: re-importing a client list just
// refreshes contact info. If the pair already converted through the
// marketplace the source is left alone - source never changes after
// creation, and silently upgrading a marketplace client to the 0% tier
// would be a fee loophole.
func (r *Repo) MarkAsExistingClient(ctx context.Context, trainerID, clientID string, contact ContactInfo) (*ClientRelationship, error) {
	contact.Trim()
	ref := r.col().Doc(DocID(trainerID, clientID))
	now := time.Now().UTC()

	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		if err != nil || !doc.Exists() {
			rel := ClientRelationship{
				TrainerID:            trainerID,
				ClientID:             clientID,
				Source:               SourceExisting,
				IsRepeat:             false,
				TotalBookings:        0,
				ClientName:           contact.Name,
				ClientNameNormalized: utils.NormalizeNameLower(contact.Name),
				ClientEmail:          contact.Email,
				ClientEmailLower:     utils.NormalizeEmail(contact.Email),
				ClientPhone:          contact.Phone,
				CreatedAt:            now,
				UpdatedAt:            now,
			}
			return tx.Create(ref, rel)
		}

		updates := map[string]interface{}{
			"updatedAt": now,
		}
		if contact.Name != "" {
			updates["clientName"] = contact.Name
			updates["clientNameNormalized"] = utils.NormalizeNameLower(contact.Name)
		}
		if contact.Email != "" {
			updates["clientEmail"] = contact.Email
			updates["clientEmailLower"] = utils.NormalizeEmail(contact.Email)
		}
		if contact.Phone != "" {
			updates["clientPhone"] = contact.Phone
		}
		return tx.Set(ref, updates, firestore.MergeAll)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to mark existing client: %v", ErrStoreUnavailable, err)
	}

	return r.Get(ctx, trainerID, clientID)
}

// FindExistingByContact reports whether the trainer already registered
// an existing client matching this email or name. Used at signup to
// auto-link a new account to an imported client list. Email matches on
// the lowercased form; names match accent-folded, so an import typed
// "José García" still links a signup typed "Jose Garcia".
func (r *Repo) FindExistingByContact(ctx context.Context, trainerID, email, name string) (bool, error) {
	if emailLower := utils.NormalizeEmail(email); emailLower != "" {
		found, err := r.matchExisting(ctx, trainerID, "clientEmailLower", emailLower)
		if err != nil || found {
			return found, err
		}
	}
	if nameNorm := utils.NormalizeNameLower(name); nameNorm != "" {
		return r.matchExisting(ctx, trainerID, "clientNameNormalized", nameNorm)
	}
	return false, nil
}

func (r *Repo) matchExisting(ctx context.Context, trainerID, field, value string) (bool, error) {
	iter := r.col().
		Where("trainerId", "==", trainerID).
		Where(field, "==", value).
		Where("source", "==", string(SourceExisting)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: contact lookup failed: %v", ErrStoreUnavailable, err)
	}
	return true, nil
}
