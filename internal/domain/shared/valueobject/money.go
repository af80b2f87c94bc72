package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	THB Currency = "THB" // Thai Baht (default)
	USD Currency = "USD"
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = THB

// MinorUnitPlaces is the number of decimal places of the minor currency unit.
const MinorUnitPlaces int32 = 2

// Money is a value object representing monetary amounts
// It is immutable - all operations return new Money instances
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyTHB creates Money in THB
func NewMoneyTHB(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: THB}
}

// NewMoneyTHBFromString creates Money in THB from a string
func NewMoneyTHBFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoneyTHB(d), nil
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// ZeroTHB returns a zero-value Money in THB
func ZeroTHB() Money {
	return Zero(THB)
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns a new Money with the sum of both amounts.
// Returns error if currencies don't match
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add %s to %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Multiply returns a new Money multiplied by the given factor
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// RoundMinor rounds half away from zero to the minor currency unit.
func (m Money) RoundMinor() Money {
	return Money{amount: m.amount.Round(MinorUnitPlaces), currency: m.currency}
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(MinorUnitPlaces), m.currency)
}

// Display formats the amount for humans, e.g. "฿6,300.00".
func (m Money) Display() string {
	fixed := m.amount.Abs().StringFixed(MinorUnitPlaces)
	intPart, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	sign := ""
	if m.amount.IsNegative() {
		sign = "-"
	}
	symbol := string(m.currency) + " "
	if m.currency == THB {
		symbol = "฿"
	}
	return sign + symbol + b.String() + "." + frac
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.StringFixed(MinorUnitPlaces),
		Currency: m.currency,
	})
}

// Sum adds all parts exactly. An empty call returns zero THB.
func Sum(parts ...Money) (Money, error) {
	if len(parts) == 0 {
		return ZeroTHB(), nil
	}
	total := Zero(parts[0].currency)
	for _, p := range parts {
		var err error
		total, err = total.Add(p)
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
