package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TicketLine is one priced, quantified entry within a ticket, optionally
// derived from a catalog product. A line whose description or unit price
// has been manually overridden is flagged edited and decoupled from live
// catalog updates.
type TicketLine struct {
	ID          string
	TicketID    string
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
	Discount    int
	Tax         decimal.Decimal
	IsEdited    bool
	ProductID   *string
}

// TicketLineUpdate carries an optional field set for a line edit. Nil fields
// are left untouched.
type TicketLineUpdate struct {
	Description *string
	UnitPrice   *decimal.Decimal
	Quantity    *int
	Discount    *int
	Tax         *decimal.Decimal
}

// Apply updates the line fields, flipping IsEdited when description or unit
// price diverges from the linked product. The product argument is the
// resolved catalog item for ProductID; pass nil when the line is unlinked.
// IsEdited is one-way: once set it never reverts here, only through
// AssignProduct.
func (l *TicketLine) Apply(update TicketLineUpdate, product *Product) {
	if update.Description != nil {
		l.setDescription(*update.Description, product)
	}
	if update.UnitPrice != nil {
		l.setUnitPrice(*update.UnitPrice, product)
	}
	if update.Quantity != nil {
		l.Quantity = *update.Quantity
	}
	if update.Discount != nil {
		l.Discount = *update.Discount
	}
	if update.Tax != nil {
		l.Tax = *update.Tax
	}
}

func (l *TicketLine) setDescription(value string, product *Product) {
	l.Description = value
	if l.linked(product) && !l.IsEdited && value != product.Name {
		l.IsEdited = true
	}
}

func (l *TicketLine) setUnitPrice(value decimal.Decimal, product *Product) {
	l.UnitPrice = value
	if l.linked(product) && !l.IsEdited && !value.Equal(product.Price) {
		l.IsEdited = true
	}
}

func (l *TicketLine) linked(product *Product) bool {
	return product != nil && l.ProductID != nil && *l.ProductID == product.ID
}

// AssignProduct (re)links the line to a catalog product, always resetting the
// edited flag. The description is copied from the product; the unit price is
// not, since it may need currency conversion first.
func (l *TicketLine) AssignProduct(p *Product) {
	if p == nil {
		l.ProductID = nil
		l.IsEdited = false
		return
	}
	id := p.ID
	l.ProductID = &id
	l.Description = p.Name
	l.IsEdited = false
}

// MarkEdited flips the edited flag. There is no inverse; clearing happens
// only through AssignProduct.
func (l *TicketLine) MarkEdited() {
	l.IsEdited = true
}

// Subtotal is quantity times unit price, excluding tax and discount.
func (l *TicketLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total is the line amount with tax added before the discount scales the
// tax-inclusive value.
func (l *TicketLine) Total() decimal.Decimal {
	return l.Tax.Add(l.Subtotal()).Mul(discountFactor(l.Discount))
}

// PretaxTotal is the discounted line amount without its tax. Ticket totals
// aggregate this, not Total; see Ticket.Total.
func (l *TicketLine) PretaxTotal() decimal.Decimal {
	return l.Subtotal().Mul(discountFactor(l.Discount))
}

// Display renders the line label as ticket/line.
func (l *TicketLine) Display() string {
	return fmt.Sprintf("%s/%s", l.TicketID, l.ID)
}

func discountFactor(percent int) decimal.Decimal {
	return hundred.Sub(decimal.NewFromInt(int64(percent))).Div(hundred)
}
