package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/text/language"
)

func TestNewValidatesCurrency(t *testing.T) {
	m, err := New(1500, "eur")
	require.NoError(t, err)
	assert.Equal(t, "EUR", m.Currency)

	_, err = New(1500, "euro")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestAddSubRequireMatchingCurrency(t *testing.T) {
	a := Must(1000, "EUR")
	b := Must(250, "EUR")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), sum.Amount)

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, int64(750), diff.Amount)

	_, err = a.Add(Must(1, "USD"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMulDivHalfUp(t *testing.T) {
	assert.Equal(t, int64(3750), Must(2500, "EUR").MulDivHalfUp(90, 60).Amount)
	assert.Equal(t, int64(2500), Must(2500, "EUR").MulDivHalfUp(60, 60).Amount)
	// 101/2 = 50.5, rounds up
	assert.Equal(t, int64(51), Must(101, "EUR").MulDivHalfUp(1, 2).Amount)
	assert.Equal(t, int64(50), Must(100, "EUR").MulDivHalfUp(1, 2).Amount)
}

func TestMulRateHalfUp(t *testing.T) {
	assert.Equal(t, int64(500), Must(2500, "EUR").MulRateHalfUp(0.20).Amount)
	assert.Equal(t, int64(1050), Must(5250, "EUR").MulRateHalfUp(0.20).Amount)
	// 3 * 0.5 = 1.5, rounds up
	assert.Equal(t, int64(2), Must(3, "EUR").MulRateHalfUp(0.5).Amount)
	assert.Equal(t, int64(0), Must(2500, "EUR").MulRateHalfUp(0).Amount)
}

func TestFormatFallsBackOnUnknownCurrency(t *testing.T) {
	got := Format(Money{Amount: 1234, Currency: "ZZZ"}, language.English)
	assert.Equal(t, "12.34 ZZZ", got)
}
