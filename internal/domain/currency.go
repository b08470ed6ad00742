package domain

import "github.com/shopspring/decimal"

// Currency describes a currency tickets can be priced in. Rate is the
// number of units per one base-currency unit.
type Currency struct {
	ID     string
	Code   string
	Name   string
	Symbol string
	Digits int32
	Rate   decimal.Decimal
}

// Equal compares currencies by code identity.
func (c Currency) Equal(other Currency) bool {
	return c.Code == other.Code
}

// Format renders an amount with the currency symbol and digit count.
func (c Currency) Format(amount decimal.Decimal) string {
	return c.Symbol + amount.StringFixed(c.Digits)
}
