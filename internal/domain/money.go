package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal, cur currency.Unit) Money {
	return Money{Amount: amount, Currency: cur}
}

func (m Money) Mul(quantity int) Money {
	return Money{
		Amount:   m.Amount.Mul(decimal.NewFromInt(int64(quantity))),
		Currency: m.Currency,
	}
}

// RoundToMinor rounds the amount to the currency's standard minor unit,
// honoring cash increments such as CHF 0.05.
func (m Money) RoundToMinor() Money {
	scale, increment := currency.Standard.Rounding(m.Currency)
	amount := m.Amount
	if increment > 1 {
		step := decimal.New(int64(increment), -int32(scale))
		amount = amount.Div(step).Round(0).Mul(step)
	}
	return Money{Amount: amount.Round(int32(scale)), Currency: m.Currency}
}

// InMinorUnits reports whether the amount needs no rounding to be stored.
func (m Money) InMinorUnits() bool {
	return m.Amount.Equal(m.RoundToMinor().Amount)
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency.String()
}
