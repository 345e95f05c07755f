package pricing

import (
	"errors"

	"pnjpremium/internal/domain/shared/money"
)

var (
	ErrInvalidRate     = errors.New("pricing: hourly rate must be positive")
	ErrInvalidDuration = errors.New("pricing: duration must be positive")
	ErrInvalidFeeRate  = errors.New("pricing: fee rate must lie in [0,1]")
)

// DefaultFeeRate is the marketplace cut applied when no override is
// configured.
const DefaultFeeRate = 0.20

// Breakdown is the money split computed once at booking creation and stored
// immutably on the booking record.
type Breakdown struct {
	Total       money.Money
	PlatformFee money.Money
	PNJEarnings money.Money
}

// Compute derives the price breakdown from an hourly rate and a duration.
// The platform fee is rounded half-up to the minor unit; earnings are derived
// by subtraction so that PlatformFee + PNJEarnings == Total holds exactly.
func Compute(hourlyRate money.Money, durationMinutes int, feeRate float64) (Breakdown, error) {
	if hourlyRate.Amount <= 0 || hourlyRate.Currency == "" {
		return Breakdown{}, ErrInvalidRate
	}
	if durationMinutes <= 0 {
		return Breakdown{}, ErrInvalidDuration
	}
	if feeRate < 0 || feeRate > 1 {
		return Breakdown{}, ErrInvalidFeeRate
	}

	total := hourlyRate.MulDivHalfUp(int64(durationMinutes), 60)
	fee := total.MulRateHalfUp(feeRate)
	earnings, err := total.Sub(fee)
	if err != nil {
		return Breakdown{}, err
	}
	return Breakdown{Total: total, PlatformFee: fee, PNJEarnings: earnings}, nil
}
