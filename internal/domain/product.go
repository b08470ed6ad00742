package domain

import "github.com/shopspring/decimal"

// Product is a read-mostly catalog item tickets sell from.
type Product struct {
	ID           string
	Name         string
	Reference    string
	Price        decimal.Decimal
	CurrencyCode string
	InStock      bool
	Quantity     int
}

// QuantityOut decrements tracked stock by the sold amount. Stock may go
// negative; the only guard is the optional pre-check at amount-set time.
func (p *Product) QuantityOut(amount int) {
	p.Quantity -= amount
}
