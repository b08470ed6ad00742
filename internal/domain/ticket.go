package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates how a ticket can be settled.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCheque  PaymentMethod = "cheque"
	PaymentCard    PaymentMethod = "card"
	PaymentVoucher PaymentMethod = "voucher"
	PaymentFree    PaymentMethod = "free"
	PaymentDebt    PaymentMethod = "debt"
)

// PaymentMethods lists the accepted settlement methods.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentCash, PaymentCheque, PaymentCard, PaymentVoucher, PaymentFree, PaymentDebt,
	}
}

// Valid reports whether the method is a known one.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCheque, PaymentCard, PaymentVoucher, PaymentFree, PaymentDebt:
		return true
	}
	return false
}

// Ticket is an in-progress or completed customer order. It owns its lines
// exclusively; deleting the ticket deletes them all.
type Ticket struct {
	ID            string
	OpenedAt      time.Time
	ClosedAt      *time.Time
	PaidAt        *time.Time
	PaymentMethod *PaymentMethod
	Comment       string
	Discount      int
	Currency      Currency
	CustomerID    *string
	CashierID     *string
	Lines         []TicketLine
}

// Closed reports whether the ticket has been finalized.
func (t *Ticket) Closed() bool {
	return t.ClosedAt != nil
}

// Paid reports whether payment has been recorded.
func (t *Ticket) Paid() bool {
	return t.PaidAt != nil
}

// Pay records the payment method and, when paid, the payment timestamp.
func (t *Ticket) Pay(method PaymentMethod, paid bool, now time.Time) {
	t.PaymentMethod = &method
	if paid {
		t.PaidAt = &now
	} else {
		t.PaidAt = nil
	}
}

// MarkClosed stamps the close time once. It returns false when the ticket is
// already closed so the stock side effect runs at most once per transition.
func (t *Ticket) MarkClosed(now time.Time) bool {
	if t.Closed() {
		return false
	}
	t.ClosedAt = &now
	return true
}

// Reopen clears the close timestamp. Decremented stock is not restored.
func (t *Ticket) Reopen() {
	t.ClosedAt = nil
}

// Subtotal is the sum of line subtotals, excluding taxes and discounts.
func (t *Ticket) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for i := range t.Lines {
		total = total.Add(t.Lines[i].Subtotal())
	}
	return total
}

// Taxes is the sum of line taxes, undiscounted.
func (t *Ticket) Taxes() decimal.Decimal {
	total := decimal.Zero
	for i := range t.Lines {
		total = total.Add(t.Lines[i].Tax)
	}
	return total
}

// Total applies the ticket discount to the pre-tax sum of line totals and
// re-adds taxes undiscounted. Note the ordering differs from the line-level
// Total, where tax is included before the line discount; both orderings are
// kept as observed in production pending business review.
func (t *Ticket) Total() decimal.Decimal {
	pretax := decimal.Zero
	for i := range t.Lines {
		pretax = pretax.Add(t.Lines[i].PretaxTotal())
	}
	return pretax.Mul(discountFactor(t.Discount)).Add(t.Taxes())
}

// Line returns the line with the given ID, or nil.
func (t *Ticket) Line(id string) *TicketLine {
	for i := range t.Lines {
		if t.Lines[i].ID == id {
			return &t.Lines[i]
		}
	}
	return nil
}

// RemoveLine drops the line with the given ID from the collection.
func (t *Ticket) RemoveLine(id string) bool {
	for i := range t.Lines {
		if t.Lines[i].ID == id {
			t.Lines = append(t.Lines[:i], t.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// FindUneditedLine returns the first unedited line referencing the product,
// or nil. Edited lines are decoupled from the catalog and never merged into.
func (t *Ticket) FindUneditedLine(productID string) *TicketLine {
	for i := range t.Lines {
		line := &t.Lines[i]
		if line.IsEdited || line.ProductID == nil {
			continue
		}
		if *line.ProductID == productID {
			return line
		}
	}
	return nil
}

// Display renders the ticket label.
func (t *Ticket) Display() string {
	return fmt.Sprintf("#%s", t.ID)
}
