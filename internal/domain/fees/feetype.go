package fees

import (
	"fmt"
)

// FeeType is the commission tier applied to a session.
type FeeType string

const (
	// FeeExisting: the trainer brought this client, so the platform
	// takes no commission.
	FeeExisting FeeType = "existing"
	// FeeRepeat: the client converted through the marketplace and has
	// at least one completed marketplace booking behind them.
	FeeRepeat FeeType = "repeat"
	// FeeMarketplace: a fresh marketplace connection, including a
	// converted client's very first booking.
	FeeMarketplace FeeType = "marketplace"
)

func ParseFeeType(s string) (FeeType, error) {
	switch FeeType(s) {
	case FeeExisting, FeeRepeat, FeeMarketplace:
		return FeeType(s), nil
	}
	return "", fmt.Errorf("%w: unknown fee type %q", ErrBadRequest, s)
}

// Schedule returns the platform commission percentage and the flat
// player booking fee for a tier. The table is fixed at three tiers.
func Schedule(ft FeeType) (platformFeePercent int64, bookingFeeCents int64) {
	switch ft {
	case FeeExisting:
		return 0, 100
	case FeeRepeat:
		return 5, 100
	default: // marketplace
		return 15, 300
	}
}
