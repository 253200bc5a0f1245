package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courtly/backend/internal/domain/relationship"
)

// memStore mirrors the Firestore repo's conditional-transition
// semantics in memory. failResolve injects a store failure for a
// specific booking id to exercise sweep fault isolation.
type memStore struct {
	mu          sync.Mutex
	seq         int
	bookings    map[string]*PendingBooking
	failResolve map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		bookings:    map[string]*PendingBooking{},
		failResolve: map[string]error{},
	}
}

var _ Store = (*memStore)(nil)

func (m *memStore) Create(_ context.Context, b PendingBooking) (*PendingBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	b.ID = fmt.Sprintf("bk-%d", m.seq)
	cp := b
	m.bookings[b.ID] = &cp
	out := b
	return &out, nil
}

func (m *memStore) Get(_ context.Context, id string) (*PendingBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) Resolve(_ context.Context, id string, to Status, resolvedBy, declineReason string, now time.Time) (*PendingBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failResolve[id]; err != nil {
		return nil, err
	}

	b, ok := m.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	if b.Status != StatusPending {
		return nil, fmt.Errorf("%w: booking %s is %s", ErrInvalidTransition, id, b.Status)
	}
	if to == StatusExpiredConfirmed && now.Before(b.ExpiresAt) {
		return nil, fmt.Errorf("%w: booking %s", ErrNotExpired, id)
	}

	b.Status = to
	b.ResolvedAt = &now
	b.ResolvedBy = resolvedBy
	b.DeclineReason = declineReason
	cp := *b
	return &cp, nil
}

func (m *memStore) SetPaymentIntent(_ context.Context, id, intentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	b.PaymentIntentID = intentID
	return nil
}

func (m *memStore) ListExpired(_ context.Context, now time.Time, limit int) ([]PendingBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []PendingBooking
	for _, b := range m.bookings {
		if b.Status == StatusPending && !now.Before(b.ExpiresAt) {
			out = append(out, *b)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// fakeRels implements relationship.Store with just enough state for
// lifecycle tests. getErr simulates a store outage.
type fakeRels struct {
	mu          sync.Mutex
	rels        map[string]*relationship.ClientRelationship
	getErr      error
	repeatCalls []string
}

func newFakeRels() *fakeRels {
	return &fakeRels{rels: map[string]*relationship.ClientRelationship{}}
}

var _ relationship.Store = (*fakeRels)(nil)

func (f *fakeRels) Get(_ context.Context, trainerID, clientID string) (*relationship.ClientRelationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	rel, ok := f.rels[relationship.DocID(trainerID, clientID)]
	if !ok {
		return nil, fmt.Errorf("%w: no relationship", relationship.ErrNotFound)
	}
	cp := *rel
	return &cp, nil
}

func (f *fakeRels) RecordMarketplaceBooking(_ context.Context, trainerID, clientID, bookingID string, _ relationship.ContactInfo) (*relationship.ClientRelationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := relationship.DocID(trainerID, clientID)
	rel, ok := f.rels[key]
	if !ok {
		now := time.Now().UTC()
		rel = &relationship.ClientRelationship{
			TrainerID:                   trainerID,
			ClientID:                    clientID,
			Source:                      relationship.SourceMarketplace,
			FirstMarketplaceBookingID:   bookingID,
			FirstMarketplaceBookingDate: &now,
		}
		f.rels[key] = rel
	}
	rel.TotalBookings++
	cp := *rel
	return &cp, nil
}

func (f *fakeRels) MarkAsRepeatClient(_ context.Context, trainerID, clientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.repeatCalls = append(f.repeatCalls, relationship.DocID(trainerID, clientID))
	rel, ok := f.rels[relationship.DocID(trainerID, clientID)]
	if !ok {
		return fmt.Errorf("%w: no relationship", relationship.ErrNotFound)
	}
	if rel.Source != relationship.SourceExisting {
		rel.IsRepeat = true
	}
	return nil
}

func (f *fakeRels) MarkAsExistingClient(_ context.Context, trainerID, clientID string, _ relationship.ContactInfo) (*relationship.ClientRelationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := relationship.DocID(trainerID, clientID)
	rel, ok := f.rels[key]
	if !ok {
		rel = &relationship.ClientRelationship{
			TrainerID: trainerID,
			ClientID:  clientID,
			Source:    relationship.SourceExisting,
		}
		f.rels[key] = rel
	}
	cp := *rel
	return &cp, nil
}

func (f *fakeRels) FindExistingByContact(_ context.Context, _, _, _ string) (bool, error) {
	return false, nil
}

// fakePayments records instructions instead of calling Stripe.
type fakePayments struct {
	mu        sync.Mutex
	charges   []string
	payouts   []string
	refunds   []string
	refundErr error
}

var _ Payments = (*fakePayments)(nil)

func (f *fakePayments) ChargePlayer(_ context.Context, b *PendingBooking) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.charges = append(f.charges, b.ID)
	return "pi_" + b.ID, nil
}

func (f *fakePayments) ReleasePayout(_ context.Context, b *PendingBooking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payouts = append(f.payouts, b.ID)
	return nil
}

func (f *fakePayments) RefundBooking(_ context.Context, b *PendingBooking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refundErr != nil {
		return f.refundErr
	}
	f.refunds = append(f.refunds, b.ID)
	return nil
}

func (f *fakePayments) payoutCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.payouts {
		if p == id {
			n++
		}
	}
	return n
}

type notifierEvent struct {
	kind   string
	id     string
	auto   bool
	reason string
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notifierEvent
}

var _ Notifier = (*fakeNotifier)(nil)

func (f *fakeNotifier) BookingCreated(_ context.Context, b *PendingBooking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, notifierEvent{kind: "created", id: b.ID})
	return nil
}

func (f *fakeNotifier) BookingConfirmed(_ context.Context, b *PendingBooking, auto bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, notifierEvent{kind: "confirmed", id: b.ID, auto: auto})
	return nil
}

func (f *fakeNotifier) BookingDeclined(_ context.Context, b *PendingBooking, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, notifierEvent{kind: "declined", id: b.ID, reason: reason})
	return nil
}

func (f *fakeNotifier) last() notifierEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return notifierEvent{}
	}
	return f.events[len(f.events)-1]
}
