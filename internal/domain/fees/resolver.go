package fees

import (
	"context"

	"courtly/backend/internal/domain/relationship"
)

// ResolveTier maps relationship state to the fee tier charged for a
// session, in strict priority order:
//
//  1. no relationship        -> marketplace
//  2. source == existing     -> existing
//  3. isRepeat               -> repeat
//  4. otherwise              -> marketplace
//
// A converted client's first marketplace booking resolves to the
// marketplace tier even though a relationship row already exists: the
// repeat discount starts with the second booking, after the first one
// completes. The decision depends on isRepeat, never on totalBookings.
func ResolveTier(rel *relationship.ClientRelationship) FeeType {
	if rel == nil {
		return FeeMarketplace
	}
	if rel.Source == relationship.SourceExisting {
		return FeeExisting
	}
	if rel.IsRepeat {
		return FeeRepeat
	}
	return FeeMarketplace
}

// Service answers tier and quote questions for a (trainer, client)
// pair by combining the relationship store with the pure functions
// above.
type Service struct {
	rels relationship.Store
}

func NewService(rels relationship.Store) *Service {
	return &Service{rels: rels}
}

// ResolveTierFor looks up the pair's relationship and resolves its
// tier. A missing relationship is not an error - it just means the
// marketplace tier.
func (s *Service) ResolveTierFor(ctx context.Context, trainerID, clientID string) (FeeType, error) {
	rel, err := s.rels.Get(ctx, trainerID, clientID)
	if err != nil {
		if relationship.IsErrNotFound(err) {
			return FeeMarketplace, nil
		}
		return "", err
	}
	return ResolveTier(rel), nil
}

// QuoteFees computes the breakdown the player would be charged right
// now. Used by the app to show fees before checkout; the authoritative
// breakdown is still frozen at booking creation.
func (s *Service) QuoteFees(ctx context.Context, trainerID, clientID string, priceCents int64) (Calculation, error) {
	ft, err := s.ResolveTierFor(ctx, trainerID, clientID)
	if err != nil {
		return Calculation{}, err
	}
	return Calculate(priceCents, ft)
}
