package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleTicket() *Ticket {
	p1 := "p1"
	return &Ticket{
		ID:       "t1",
		Currency: Currency{Code: "USD", Rate: dec("1")},
		Lines: []TicketLine{
			{ID: "l1", TicketID: "t1", UnitPrice: dec("10.00"), Quantity: 2, Discount: 25, Tax: dec("1.00"), ProductID: &p1},
			{ID: "l2", TicketID: "t1", UnitPrice: dec("4.00"), Quantity: 1, Tax: dec("0.50")},
		},
	}
}

func TestTicketAggregates(t *testing.T) {
	ticket := sampleTicket()

	assert.True(t, ticket.Subtotal().Equal(dec("24.00")), "subtotal %s", ticket.Subtotal())
	assert.True(t, ticket.Taxes().Equal(dec("1.50")), "taxes %s", ticket.Taxes())
	// pretax line totals: 20*0.75 + 4 = 19; no ticket discount; taxes re-added
	assert.True(t, ticket.Total().Equal(dec("20.50")), "total %s", ticket.Total())
}

func TestTicketTotalAppliesTicketDiscountBeforeTaxes(t *testing.T) {
	ticket := sampleTicket()
	ticket.Discount = 10

	// (15 + 4) * 0.9 + 1.5
	assert.True(t, ticket.Total().Equal(dec("18.60")), "total %s", ticket.Total())
	// subtotal and taxes are not affected by the ticket discount
	assert.True(t, ticket.Subtotal().Equal(dec("24.00")))
	assert.True(t, ticket.Taxes().Equal(dec("1.50")))
}

func TestTicketTotalDiffersFromSumOfLineTotals(t *testing.T) {
	ticket := &Ticket{
		Currency: Currency{Code: "USD"},
		Lines: []TicketLine{
			{ID: "l1", UnitPrice: dec("10.00"), Quantity: 1, Discount: 50, Tax: dec("2.00")},
		},
	}

	// line total discounts the tax, ticket total does not
	assert.True(t, ticket.Lines[0].Total().Equal(dec("6.00")))
	assert.True(t, ticket.Total().Equal(dec("7.00")))
}

func TestEmptyTicketAggregatesAreZero(t *testing.T) {
	ticket := &Ticket{Currency: Currency{Code: "USD"}}

	assert.True(t, ticket.Subtotal().IsZero())
	assert.True(t, ticket.Taxes().IsZero())
	assert.True(t, ticket.Total().IsZero())
}

func TestMarkClosedTransitionsOnce(t *testing.T) {
	ticket := sampleTicket()
	now := time.Now()

	assert.False(t, ticket.Closed())
	assert.True(t, ticket.MarkClosed(now))
	assert.True(t, ticket.Closed())
	assert.False(t, ticket.MarkClosed(now.Add(time.Minute)))
	assert.Equal(t, now, *ticket.ClosedAt)

	ticket.Reopen()
	assert.False(t, ticket.Closed())
	assert.True(t, ticket.MarkClosed(now))
}

func TestPayRecordsMethodAndTimestamp(t *testing.T) {
	ticket := sampleTicket()
	now := time.Now()

	ticket.Pay(PaymentCard, true, now)
	assert.True(t, ticket.Paid())
	if assert.NotNil(t, ticket.PaymentMethod) {
		assert.Equal(t, PaymentCard, *ticket.PaymentMethod)
	}

	ticket.Pay(PaymentDebt, false, now)
	assert.False(t, ticket.Paid())
}

func TestFindUneditedLine(t *testing.T) {
	ticket := sampleTicket()

	found := ticket.FindUneditedLine("p1")
	if assert.NotNil(t, found) {
		assert.Equal(t, "l1", found.ID)
	}

	ticket.Lines[0].MarkEdited()
	assert.Nil(t, ticket.FindUneditedLine("p1"))
	assert.Nil(t, ticket.FindUneditedLine("unknown"))
}

func TestLineLookupAndRemoval(t *testing.T) {
	ticket := sampleTicket()

	if line := ticket.Line("l2"); assert.NotNil(t, line) {
		assert.Equal(t, "l2", line.ID)
	}
	assert.Nil(t, ticket.Line("missing"))

	assert.True(t, ticket.RemoveLine("l1"))
	assert.False(t, ticket.RemoveLine("l1"))
	assert.Len(t, ticket.Lines, 1)
	assert.Equal(t, "l2", ticket.Lines[0].ID)
}

func TestPaymentMethodValid(t *testing.T) {
	for _, method := range PaymentMethods() {
		assert.True(t, method.Valid(), "method %s", method)
	}
	assert.False(t, PaymentMethod("bitcoin").Valid())
	assert.False(t, PaymentMethod("").Valid())
}

func TestCurrencyFormat(t *testing.T) {
	usd := Currency{Code: "USD", Symbol: "$", Digits: 2}
	assert.Equal(t, "$12.50", usd.Format(dec("12.5")))

	jpy := Currency{Code: "JPY", Symbol: "¥", Digits: 0}
	assert.Equal(t, "¥120", jpy.Format(dec("120")))
}
