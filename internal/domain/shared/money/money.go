package money

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrNegativeAmount   = errors.New("money: amount cannot be negative")
)

// Money keeps amounts in integer minor units (cents) to avoid floating point drift.
type Money struct {
	Amount   int64
	Currency string
}

// New constructs a Money value validating minimal invariants.
func New(amount int64, cur string) (Money, error) {
	if len(cur) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: strings.ToUpper(cur)}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount int64, cur string) Money {
	m, err := New(amount, cur)
	if err != nil {
		panic(err)
	}
	return m
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub subtracts other from the receiver.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// MulDivHalfUp scales the amount by num/den rounding half up in minor units.
// Used to derive a total from an hourly rate and a duration in minutes.
func (m Money) MulDivHalfUp(num, den int64) Money {
	if den == 0 {
		return Money{Currency: m.Currency}
	}
	product := m.Amount * num
	rounded := divRoundHalfUp(product, den)
	return Money{Amount: rounded, Currency: m.Currency}
}

// MulRateHalfUp multiplies the amount by a fractional rate, rounding the
// result to the nearest minor unit with half-up semantics. Rates are expected
// in [0,1]; sub-cent remainders never survive this call.
func (m Money) MulRateHalfUp(rate float64) Money {
	// Rates in practice are short decimals (0.20); scale to a 1e6 integer
	// ratio so the rounding stays in integer arithmetic.
	const scale = 1_000_000
	num := int64(rate*scale + 0.5)
	product := m.Amount * num
	return Money{Amount: divRoundHalfUp(product, scale), Currency: m.Currency}
}

// IsZero returns true if the amount equals zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}

func divRoundHalfUp(num, den int64) int64 {
	if den < 0 {
		num, den = -num, -den
	}
	if num >= 0 {
		return (num + den/2) / den
	}
	return -((-num + den/2) / den)
}

// Format renders the amount for display in the given locale, delegating to
// locale-aware currency formatting. Unknown currencies fall back to a plain
// "12.34 XYZ" rendering.
func Format(m Money, tag language.Tag) string {
	unit, err := currency.ParseISO(m.Currency)
	if err != nil {
		return fmt.Sprintf("%.2f %s", float64(m.Amount)/100, m.Currency)
	}
	p := message.NewPrinter(tag)
	return p.Sprint(currency.Symbol(unit.Amount(float64(m.Amount) / 100)))
}
