package kernel

import (
	"fmt"
	"regexp"
	"strings"

	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError("Money must be created via NewMoney")

	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	hundred         = decimal.NewFromInt(100)
)

// Money is a non-negative decimal amount in a three letter currency.
type Money struct {
	amount   decimal.Decimal
	currency string
	valid    bool
}

// NewMoney validates the amount and normalizes the currency to upper case.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if !currencyPattern.MatchString(currency) {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("currency", fmt.Errorf("%q is not an ISO-4217 code", currency))
	}
	if amount.IsNegative() {
		return Money{}, errs.NewValueIsOutOfRangeError("amount", amount.String(), 0, "unbounded")
	}

	return Money{amount: amount, currency: currency, valid: true}, nil
}

// MustMoney is NewMoney for literals in tests and seed data.
func MustMoney(amount, currency string) Money {
	m, err := NewMoney(decimal.RequireFromString(amount), currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }

// MinorUnits converts the amount to cents, rounding half away from zero.
func (m Money) MinorUnits() int64 {
	return m.amount.Mul(hundred).Round(0).IntPart()
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) Validate() error {
	if !m.valid {
		return ErrMoneyIsNotConstructed
	}
	return nil
}

func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}
