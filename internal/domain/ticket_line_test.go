package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func catalogProduct() *Product {
	return &Product{
		ID:           "p1",
		Name:         "Espresso",
		Price:        dec("2.50"),
		CurrencyCode: "USD",
		InStock:      true,
		Quantity:     10,
	}
}

func linkedLine(p *Product) TicketLine {
	line := TicketLine{
		TicketID:  "t1",
		UnitPrice: p.Price,
		Quantity:  1,
	}
	line.AssignProduct(p)
	return line
}

func TestApplyKeepsLineUneditedWhenMatchingProduct(t *testing.T) {
	p := catalogProduct()
	line := linkedLine(p)

	desc := p.Name
	price := p.Price
	qty := 3
	line.Apply(TicketLineUpdate{Description: &desc, UnitPrice: &price, Quantity: &qty}, p)

	assert.False(t, line.IsEdited)
	assert.Equal(t, 3, line.Quantity)
}

func TestApplyFlagsEditedOnDescriptionChange(t *testing.T) {
	p := catalogProduct()
	line := linkedLine(p)

	desc := "Double Espresso"
	line.Apply(TicketLineUpdate{Description: &desc}, p)

	assert.True(t, line.IsEdited)
}

func TestApplyFlagsEditedOnPriceChange(t *testing.T) {
	p := catalogProduct()
	line := linkedLine(p)

	price := dec("3.00")
	line.Apply(TicketLineUpdate{UnitPrice: &price}, p)

	assert.True(t, line.IsEdited)
}

func TestApplyEditedFlagIsOneWay(t *testing.T) {
	p := catalogProduct()
	line := linkedLine(p)

	price := dec("3.00")
	line.Apply(TicketLineUpdate{UnitPrice: &price}, p)
	assert.True(t, line.IsEdited)

	// restoring the catalog values does not clear the flag
	desc := p.Name
	original := p.Price
	line.Apply(TicketLineUpdate{Description: &desc, UnitPrice: &original}, p)
	assert.True(t, line.IsEdited)
}

func TestApplyUnlinkedLineNeverFlagsEdited(t *testing.T) {
	line := TicketLine{TicketID: "t1", Description: "Misc", UnitPrice: dec("1.00"), Quantity: 1}

	desc := "Something else"
	price := dec("9.99")
	line.Apply(TicketLineUpdate{Description: &desc, UnitPrice: &price}, nil)

	assert.False(t, line.IsEdited)
}

func TestApplyQuantityAndDiscountDoNotFlagEdited(t *testing.T) {
	p := catalogProduct()
	line := linkedLine(p)

	qty := 5
	disc := 10
	tax := dec("0.40")
	line.Apply(TicketLineUpdate{Quantity: &qty, Discount: &disc, Tax: &tax}, p)

	assert.False(t, line.IsEdited)
	assert.Equal(t, 5, line.Quantity)
	assert.Equal(t, 10, line.Discount)
	assert.True(t, line.Tax.Equal(dec("0.40")))
}

func TestAssignProductResetsEditedAndCopiesName(t *testing.T) {
	p := catalogProduct()
	line := TicketLine{TicketID: "t1", Description: "Custom", UnitPrice: dec("9.00"), Quantity: 1}
	line.MarkEdited()

	line.AssignProduct(p)

	assert.False(t, line.IsEdited)
	assert.Equal(t, p.Name, line.Description)
	if assert.NotNil(t, line.ProductID) {
		assert.Equal(t, p.ID, *line.ProductID)
	}
	// price is left for the caller to convert
	assert.True(t, line.UnitPrice.Equal(dec("9.00")))
}

func TestAssignNilProductUnlinks(t *testing.T) {
	p := catalogProduct()
	line := linkedLine(p)
	line.MarkEdited()

	line.AssignProduct(nil)

	assert.Nil(t, line.ProductID)
	assert.False(t, line.IsEdited)
}

func TestLineAmounts(t *testing.T) {
	line := TicketLine{
		UnitPrice: dec("10.00"),
		Quantity:  2,
		Discount:  25,
		Tax:       dec("1.00"),
	}

	assert.True(t, line.Subtotal().Equal(dec("20.00")), "subtotal %s", line.Subtotal())
	// discount scales the tax-inclusive amount: (1 + 20) * 0.75
	assert.True(t, line.Total().Equal(dec("15.75")), "total %s", line.Total())
	// pretax excludes tax entirely: 20 * 0.75
	assert.True(t, line.PretaxTotal().Equal(dec("15.00")), "pretax %s", line.PretaxTotal())
}

func TestLineAmountsZeroDiscount(t *testing.T) {
	line := TicketLine{UnitPrice: dec("4.20"), Quantity: 3, Tax: dec("0.50")}

	assert.True(t, line.Subtotal().Equal(dec("12.60")))
	assert.True(t, line.Total().Equal(dec("13.10")))
	assert.True(t, line.PretaxTotal().Equal(dec("12.60")))
}

func TestLineDisplay(t *testing.T) {
	line := TicketLine{ID: "l1", TicketID: "t1"}
	assert.Equal(t, "t1/l1", line.Display())
}
