package relationship

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courtly/backend/internal/utils"
)

// memStore mirrors the Firestore repo's transactional semantics in
// memory for service tests: create-or-update upserts, atomic counter
// increments, and the monotonic repeat flip.
type memStore struct {
	mu   sync.Mutex
	rels map[string]*ClientRelationship
}

func newMemStore() *memStore {
	return &memStore{rels: map[string]*ClientRelationship{}}
}

var _ Store = (*memStore)(nil)

func (m *memStore) Get(_ context.Context, trainerID, clientID string) (*ClientRelationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rel, ok := m.rels[DocID(trainerID, clientID)]
	if !ok {
		return nil, fmt.Errorf("%w: relationship %s", ErrNotFound, DocID(trainerID, clientID))
	}
	cp := *rel
	return &cp, nil
}

func (m *memStore) RecordMarketplaceBooking(_ context.Context, trainerID, clientID, bookingID string, contact ContactInfo) (*ClientRelationship, error) {
	contact.Trim()
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	key := DocID(trainerID, clientID)
	rel, ok := m.rels[key]
	if !ok {
		rel = &ClientRelationship{
			TrainerID:                   trainerID,
			ClientID:                    clientID,
			Source:                      SourceMarketplace,
			FirstMarketplaceBookingID:   bookingID,
			FirstMarketplaceBookingDate: &now,
			CreatedAt:                   now,
		}
		m.rels[key] = rel
	}
	rel.TotalBookings++
	if contact.Name != "" {
		rel.ClientName = contact.Name
		rel.ClientNameNormalized = utils.NormalizeNameLower(contact.Name)
	}
	if contact.Email != "" {
		rel.ClientEmail = contact.Email
		rel.ClientEmailLower = utils.NormalizeEmail(contact.Email)
	}
	if contact.Phone != "" {
		rel.ClientPhone = contact.Phone
	}
	rel.UpdatedAt = now

	cp := *rel
	return &cp, nil
}

func (m *memStore) MarkAsRepeatClient(_ context.Context, trainerID, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rel, ok := m.rels[DocID(trainerID, clientID)]
	if !ok {
		return fmt.Errorf("%w: relationship %s", ErrNotFound, DocID(trainerID, clientID))
	}
	if rel.Source == SourceExisting || rel.IsRepeat {
		return nil
	}
	rel.IsRepeat = true
	rel.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memStore) MarkAsExistingClient(_ context.Context, trainerID, clientID string, contact ContactInfo) (*ClientRelationship, error) {
	contact.Trim()
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	key := DocID(trainerID, clientID)
	rel, ok := m.rels[key]
	if !ok {
		rel = &ClientRelationship{
			TrainerID: trainerID,
			ClientID:  clientID,
			Source:    SourceExisting,
			CreatedAt: now,
		}
		m.rels[key] = rel
	}
	if contact.Name != "" {
		rel.ClientName = contact.Name
		rel.ClientNameNormalized = utils.NormalizeNameLower(contact.Name)
	}
	if contact.Email != "" {
		rel.ClientEmail = contact.Email
		rel.ClientEmailLower = utils.NormalizeEmail(contact.Email)
	}
	if contact.Phone != "" {
		rel.ClientPhone = contact.Phone
	}
	rel.UpdatedAt = now

	cp := *rel
	return &cp, nil
}

func (m *memStore) FindExistingByContact(_ context.Context, trainerID, email, name string) (bool, error) {
	emailLower := utils.NormalizeEmail(email)
	nameNorm := utils.NormalizeNameLower(name)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rel := range m.rels {
		if rel.TrainerID != trainerID || rel.Source != SourceExisting {
			continue
		}
		if emailLower != "" && rel.ClientEmailLower == emailLower {
			return true, nil
		}
		if nameNorm != "" && rel.ClientNameNormalized == nameNorm {
			return true, nil
		}
	}
	return false, nil
}
