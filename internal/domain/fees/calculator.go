package fees

import (
	"fmt"
)

// Calculation is the full monetary breakdown for one session. It is
// computed once at booking creation and frozen onto the booking, so a
// later relationship change never retroactively alters a charge.
type Calculation struct {
	SessionPriceCents      int64   `firestore:"sessionPriceCents" json:"sessionPriceCents"`
	FeeType                FeeType `firestore:"feeType" json:"feeType"`
	PlatformFeePercent     int64   `firestore:"platformFeePercent" json:"platformFeePercent"`
	PlatformFeeAmountCents int64   `firestore:"platformFeeAmountCents" json:"platformFeeAmountCents"`
	PlayerBookingFeeCents  int64   `firestore:"playerBookingFeeCents" json:"playerBookingFeeCents"`
	TotalChargeCents       int64   `firestore:"totalChargeCents" json:"totalChargeCents"`
	TrainerPayoutCents     int64   `firestore:"trainerPayoutCents" json:"trainerPayoutCents"`
}

// Calculate turns (price, tier) into the monetary breakdown.
// Platform fee rounds half up to a whole cent, so
// trainerPayout + platformFee == sessionPrice exactly.
func Calculate(priceCents int64, ft FeeType) (Calculation, error) {
	if priceCents <= 0 {
		return Calculation{}, fmt.Errorf("%w: price must be positive, got %d", ErrBadRequest, priceCents)
	}
	if _, err := ParseFeeType(string(ft)); err != nil {
		return Calculation{}, err
	}

	percent, bookingFee := Schedule(ft)
	platformFee := roundHalfUpPercent(priceCents, percent)

	return Calculation{
		SessionPriceCents:      priceCents,
		FeeType:                ft,
		PlatformFeePercent:     percent,
		PlatformFeeAmountCents: platformFee,
		PlayerBookingFeeCents:  bookingFee,
		TotalChargeCents:       priceCents + bookingFee,
		TrainerPayoutCents:     priceCents - platformFee,
	}, nil
}

// roundHalfUpPercent computes price*percent/100 in integer cents,
// rounding half cents up (away from zero). Inputs are non-negative.
func roundHalfUpPercent(priceCents, percent int64) int64 {
	return (priceCents*percent + 50) / 100
}
