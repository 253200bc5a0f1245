package relationship

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, trainerID, clientID string) (*ClientRelationship, error) {
	if err := validatePair(trainerID, clientID); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, trainerID, clientID)
}

// GetForCaller fetches a relationship on behalf of an authenticated
// user. The caller must be one side of the pair; anyone else gets a
// not-found rather than confirmation the pair exists.
func (s *Service) GetForCaller(ctx context.Context, callerUID, trainerID, clientID string) (*ClientRelationship, error) {
	if callerUID != trainerID && callerUID != clientID {
		return nil, fmt.Errorf("%w: relationship %s", ErrNotFound, DocID(trainerID, clientID))
	}
	return s.Get(ctx, trainerID, clientID)
}

func (s *Service) RecordMarketplaceBooking(ctx context.Context, trainerID, clientID, bookingID string, contact ContactInfo) (*ClientRelationship, error) {
	if err := validatePair(trainerID, clientID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(bookingID) == "" {
		return nil, fmt.Errorf("%w: bookingId is required", ErrBadRequest)
	}
	return s.store.RecordMarketplaceBooking(ctx, trainerID, clientID, bookingID, contact)
}

func (s *Service) MarkAsRepeatClient(ctx context.Context, trainerID, clientID string) error {
	if err := validatePair(trainerID, clientID); err != nil {
		return err
	}
	return s.store.MarkAsRepeatClient(ctx, trainerID, clientID)
}

func (s *Service) MarkAsExistingClient(ctx context.Context, trainerID, clientID string, contact ContactInfo) (*ClientRelationship, error) {
	if err := validatePair(trainerID, clientID); err != nil {
		return nil, err
	}
	return s.store.MarkAsExistingClient(ctx, trainerID, clientID, contact)
}

func (s *Service) FindExistingByContact(ctx context.Context, trainerID, email, name string) (bool, error) {
	if strings.TrimSpace(trainerID) == "" {
		return false, fmt.Errorf("%w: trainerId is required", ErrBadRequest)
	}
	if strings.TrimSpace(email) == "" && strings.TrimSpace(name) == "" {
		return false, fmt.Errorf("%w: email or name is required", ErrBadRequest)
	}
	return s.store.FindExistingByContact(ctx, trainerID, email, name)
}

func validatePair(trainerID, clientID string) error {
	if strings.TrimSpace(trainerID) == "" {
		return fmt.Errorf("%w: trainerId is required", ErrBadRequest)
	}
	if strings.TrimSpace(clientID) == "" {
		return fmt.Errorf("%w: clientId is required", ErrBadRequest)
	}
	return nil
}
