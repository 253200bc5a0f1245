package booking

import (
	"strings"
	"time"

	"courtly/backend/internal/domain/fees"
)

// Status is the lifecycle state of a pending booking. A booking starts
// pending and moves exactly once to one of the terminal states.
type Status string

const (
	StatusPending Status = "pending"
	// StatusConfirmed: the facility owner accepted the booking.
	StatusConfirmed Status = "confirmed"
	// StatusDeclined: the owner turned it down; the player is refunded.
	StatusDeclined Status = "declined"
	// StatusExpiredConfirmed: the response window elapsed and the sweep
	// confirmed the booking on the owner's behalf. Same payout and
	// relationship side effects as StatusConfirmed, flagged for audit
	// and notification copy.
	StatusExpiredConfirmed Status = "expired_confirmed"
)

func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusDeclined || s == StatusExpiredConfirmed
}

// Who resolved the booking, for audit metadata.
const (
	ResolvedByOwner  = "owner"
	ResolvedBySystem = "system"
)

// PendingBooking is one session request from a player to a facility
// owner or trainer. The fee breakdown is frozen at creation time.
type PendingBooking struct {
	ID        string `firestore:"id" json:"id"`
	PlayerID  string `firestore:"playerId" json:"playerId"`
	TrainerID string `firestore:"trainerId" json:"trainerId"`
	CourtID   string `firestore:"courtId,omitempty" json:"courtId,omitempty"`

	Date      string `firestore:"date" json:"date"`           // "YYYY-MM-DD"
	StartTime string `firestore:"startTime" json:"startTime"` // "HH:MM"
	EndTime   string `firestore:"endTime" json:"endTime"`     // "HH:MM"

	PriceCents int64            `firestore:"priceCents" json:"priceCents"`
	Fees       fees.Calculation `firestore:"fees" json:"fees"`

	Status    Status    `firestore:"status" json:"status"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	ExpiresAt time.Time `firestore:"expiresAt" json:"expiresAt"`

	// Audit metadata, written once at resolution.
	ResolvedAt    *time.Time `firestore:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	ResolvedBy    string     `firestore:"resolvedBy,omitempty" json:"resolvedBy,omitempty"`
	DeclineReason string     `firestore:"declineReason,omitempty" json:"declineReason,omitempty"`

	PaymentIntentID string `firestore:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`

	PlayerName  string `firestore:"playerName,omitempty" json:"playerName,omitempty"`
	PlayerEmail string `firestore:"playerEmail,omitempty" json:"playerEmail,omitempty"`
	PlayerPhone string `firestore:"playerPhone,omitempty" json:"playerPhone,omitempty"`
}

// CreateInput is the request to create a pending booking.
type CreateInput struct {
	TrainerID  string `json:"trainerId"`
	CourtID    string `json:"courtId,omitempty"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	PriceCents int64  `json:"priceCents"`

	// ResponseWindowMinutes overrides the configured response window
	// for this booking. Zero means use the default.
	ResponseWindowMinutes int `json:"responseWindowMinutes,omitempty"`

	PlayerName  string `json:"playerName,omitempty"`
	PlayerEmail string `json:"playerEmail,omitempty"`
	PlayerPhone string `json:"playerPhone,omitempty"`
}

func (in *CreateInput) Trim() {
	in.TrainerID = strings.TrimSpace(in.TrainerID)
	in.CourtID = strings.TrimSpace(in.CourtID)
	in.Date = strings.TrimSpace(in.Date)
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	in.PlayerName = strings.TrimSpace(in.PlayerName)
	in.PlayerEmail = strings.TrimSpace(in.PlayerEmail)
	in.PlayerPhone = strings.TrimSpace(in.PlayerPhone)
}
