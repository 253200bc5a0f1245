package relationship

import (
	"strings"
	"time"
)

// Source says how a trainer/facility and a client first connected.
// It is set once at creation and never changes.
type Source string

const (
	// SourceExisting marks a client the trainer brought to the platform
	// themselves (imported client list, walk-in, etc.).
	SourceExisting Source = "existing"
	// SourceMarketplace marks a client who found the trainer through
	// the marketplace.
	SourceMarketplace Source = "marketplace"
)

// ClientRelationship is the durable record for one (trainer, client)
// pair. One document per pair, keyed deterministically by DocID.
type ClientRelationship struct {
	TrainerID string `firestore:"trainerId" json:"trainerId"`
	ClientID  string `firestore:"clientId" json:"clientId"`
	Source    Source `firestore:"source" json:"source"`

	// IsRepeat flips to true exactly once, when the client's first
	// marketplace booking completes. It never reverts, and stays false
	// forever for existing-source relationships.
	IsRepeat bool `firestore:"isRepeat" json:"isRepeat"`

	FirstMarketplaceBookingID   string     `firestore:"firstMarketplaceBookingId,omitempty" json:"firstMarketplaceBookingId,omitempty"`
	FirstMarketplaceBookingDate *time.Time `firestore:"firstMarketplaceBookingDate,omitempty" json:"firstMarketplaceBookingDate,omitempty"`

	TotalBookings int64 `firestore:"totalBookings" json:"totalBookings"`

	ClientName string `firestore:"clientName,omitempty" json:"clientName,omitempty"`
	// ClientNameNormalized is the accent-folded lowercase form of
	// ClientName, kept alongside it so imported names like "José García"
	// match a later signup typed without accents.
	ClientNameNormalized string `firestore:"clientNameNormalized,omitempty" json:"clientNameNormalized,omitempty"`
	ClientEmail          string `firestore:"clientEmail,omitempty" json:"clientEmail,omitempty"`
	ClientEmailLower     string `firestore:"clientEmailLower,omitempty" json:"clientEmailLower,omitempty"`
	ClientPhone          string `firestore:"clientPhone,omitempty" json:"clientPhone,omitempty"`

	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// ContactInfo is the client contact data refreshed on each booking and
// on existing-client imports.
type ContactInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func (c *ContactInfo) Trim() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
}

// DocID builds the deterministic document id for a pair. Using the pair
// itself as the key is what makes upserts race-free: two concurrent
// writers always land on the same document.
func DocID(trainerID, clientID string) string {
	return trainerID + "__" + clientID
}
