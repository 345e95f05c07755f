package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnjpremium/internal/domain/shared/money"
)

func TestComputeOneHourSession(t *testing.T) {
	breakdown, err := Compute(money.Must(2500, "EUR"), 60, DefaultFeeRate)
	require.NoError(t, err)

	assert.Equal(t, int64(2500), breakdown.Total.Amount)
	assert.Equal(t, int64(500), breakdown.PlatformFee.Amount)
	assert.Equal(t, int64(2000), breakdown.PNJEarnings.Amount)
}

func TestComputeNinetyMinuteSession(t *testing.T) {
	breakdown, err := Compute(money.Must(3500, "EUR"), 90, DefaultFeeRate)
	require.NoError(t, err)

	assert.Equal(t, int64(5250), breakdown.Total.Amount)
	assert.Equal(t, int64(1050), breakdown.PlatformFee.Amount)
	assert.Equal(t, int64(4200), breakdown.PNJEarnings.Amount)
}

func TestComputeFeePlusEarningsEqualsTotal(t *testing.T) {
	rates := []int64{1999, 2500, 3333, 4175, 9999}
	durations := []int{15, 45, 60, 75, 90, 135}
	for _, rate := range rates {
		for _, minutes := range durations {
			breakdown, err := Compute(money.Must(rate, "EUR"), minutes, DefaultFeeRate)
			require.NoError(t, err)
			assert.Equal(t, breakdown.Total.Amount, breakdown.PlatformFee.Amount+breakdown.PNJEarnings.Amount,
				"rate=%d minutes=%d", rate, minutes)
		}
	}
}

func TestComputeProRatesPartialHours(t *testing.T) {
	breakdown, err := Compute(money.Must(2500, "EUR"), 30, DefaultFeeRate)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), breakdown.Total.Amount)
}

func TestComputeRejectsBadInput(t *testing.T) {
	_, err := Compute(money.Money{}, 60, DefaultFeeRate)
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = Compute(money.Must(2500, "EUR"), 0, DefaultFeeRate)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = Compute(money.Must(2500, "EUR"), -30, DefaultFeeRate)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = Compute(money.Must(2500, "EUR"), 60, 1.5)
	assert.ErrorIs(t, err, ErrInvalidFeeRate)

	_, err = Compute(money.Must(2500, "EUR"), 60, -0.1)
	assert.ErrorIs(t, err, ErrInvalidFeeRate)
}

func TestComputeZeroFeeRateGivesEverythingToProvider(t *testing.T) {
	breakdown, err := Compute(money.Must(2500, "EUR"), 60, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), breakdown.PlatformFee.Amount)
	assert.Equal(t, breakdown.Total.Amount, breakdown.PNJEarnings.Amount)
}
