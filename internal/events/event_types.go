package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinbox/coinbox-mod-sales/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTotalsChanged   EventType = "sales_totals_changed"
	EventTicketClosed    EventType = "sales_ticket_closed"
	EventTicketCancelled EventType = "sales_ticket_cancelled"
)

// Event represents a domain event emitted by the sales manager.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TotalsChangedPayload carries the recomputed aggregates after a mutation.
// Totals are zero when no ticket is selected.
type TotalsChangedPayload struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Taxes    decimal.Decimal `json:"taxes"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// ReceiptLine is one settled line on a closed ticket.
type ReceiptLine struct {
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Discount    int             `json:"discount"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

// TicketClosedPayload describes the settled ticket for receipt consumers.
type TicketClosedPayload struct {
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Paid          bool                 `json:"paid"`
	Currency      string               `json:"currency"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	Taxes         decimal.Decimal      `json:"taxes"`
	Total         decimal.Decimal      `json:"total"`
	Lines         []ReceiptLine        `json:"lines"`
}

// TicketCancelledPayload marks an abandoned ticket.
type TicketCancelledPayload struct {
	OpenedAt time.Time `json:"opened_at"`
}
