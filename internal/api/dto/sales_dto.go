package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SelectTicketRequest payload.
type SelectTicketRequest struct {
	TicketID string `json:"ticket_id"`
}

// CloseTicketRequest payload.
type CloseTicketRequest struct {
	Method string `json:"method"`
	Paid   bool   `json:"paid"`
}

// CreateLineRequest payload.
type CreateLineRequest struct {
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Discount    int             `json:"discount"`
	Tax         decimal.Decimal `json:"tax"`
	ProductID   *string         `json:"product_id"`
}

// UpdateLineRequest payload; nil fields are untouched.
type UpdateLineRequest struct {
	Description *string          `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Quantity    *int             `json:"quantity"`
	Discount    *int             `json:"discount"`
	Tax         *decimal.Decimal `json:"tax"`
}

// SetLineAmountRequest payload.
type SetLineAmountRequest struct {
	Amount int  `json:"amount"`
	Force  bool `json:"force"`
}

// AddProductRequest payload.
type AddProductRequest struct {
	ProductID string `json:"product_id"`
}

// SetDiscountRequest payload.
type SetDiscountRequest struct {
	Discount int `json:"discount"`
}

// SetCommentRequest payload.
type SetCommentRequest struct {
	Comment string `json:"comment"`
}

// SetCustomerRequest payload; nil clears the customer.
type SetCustomerRequest struct {
	CustomerID *string `json:"customer_id"`
}

// SetCurrencyRequest payload; nil falls back to the default currency.
type SetCurrencyRequest struct {
	Code *string `json:"code"`
}

// TicketLineResponse represents one line.
type TicketLineResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Discount    int             `json:"discount"`
	Tax         decimal.Decimal `json:"tax"`
	IsEdited    bool            `json:"is_edited"`
	ProductID   *string         `json:"product_id,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Total       decimal.Decimal `json:"total"`
}

// TicketResponse provides full ticket info.
type TicketResponse struct {
	ID            string               `json:"id"`
	Display       string               `json:"display"`
	OpenedAt      time.Time            `json:"opened_at"`
	ClosedAt      *time.Time           `json:"closed_at,omitempty"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
	PaymentMethod *string              `json:"payment_method,omitempty"`
	Comment       string               `json:"comment,omitempty"`
	Discount      int                  `json:"discount"`
	Currency      string               `json:"currency"`
	CustomerID    *string              `json:"customer_id,omitempty"`
	CashierID     *string              `json:"cashier_id,omitempty"`
	Lines         []TicketLineResponse `json:"lines"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	Taxes         decimal.Decimal      `json:"taxes"`
	Total         decimal.Decimal      `json:"total"`
}

// TotalsResponse carries the session aggregates.
type TotalsResponse struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Taxes    decimal.Decimal `json:"taxes"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// CurrencyResponse represents a configured currency.
type CurrencyResponse struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Symbol string          `json:"symbol"`
	Digits int32           `json:"digits"`
	Rate   decimal.Decimal `json:"rate"`
}

// ProductResponse represents a catalog item.
type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Reference string          `json:"reference"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	InStock   bool            `json:"in_stock"`
	Quantity  int             `json:"quantity"`
}

// CustomerResponse represents a customer.
type CustomerResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Discount int    `json:"discount"`
}
