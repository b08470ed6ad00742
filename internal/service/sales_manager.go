package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/coinbox/coinbox-mod-sales/internal/domain"
	"github.com/coinbox/coinbox-mod-sales/internal/events"
	"github.com/coinbox/coinbox-mod-sales/internal/repository"
	"github.com/coinbox/coinbox-mod-sales/pkg/util"
)

// CurrencyConverter is the conversion collaborator the manager depends on.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error)
	Default(ctx context.Context) (*domain.Currency, error)
}

// Dependencies bundles collaborators for the sales manager.
type Dependencies struct {
	TicketRepo   repository.TicketRepository
	LineRepo     repository.TicketLineRepository
	ProductRepo  repository.ProductRepository
	CurrencyRepo repository.CurrencyRepository
	CustomerRepo repository.CustomerRepository
	Converter    CurrencyConverter
	Dispatcher   events.Dispatcher
}

// TicketLineInput describes a new line payload. An empty Description with a
// linked product inherits the product name instead of blanking the line.
type TicketLineInput struct {
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
	Discount    int
	Tax         decimal.Decimal
	ProductID   *string
}

// SalesManager is the single mutation surface for one cashier session. It
// holds the currently selected ticket and an optional currency override used
// when no ticket is selected. Every mutation ends by signaling totals changed
// to subscribed observers, strictly after the change has been persisted.
type SalesManager struct {
	mu        sync.Mutex
	sessionID string
	cashierID *string

	tickets    repository.TicketRepository
	lines      repository.TicketLineRepository
	products   repository.ProductRepository
	currencies repository.CurrencyRepository
	customers  repository.CustomerRepository
	converter  CurrencyConverter
	dispatcher events.Dispatcher

	ticket   *domain.Ticket
	override *domain.Currency
}

// NewSalesManager constructs a manager for one session.
func NewSalesManager(sessionID string, cashierID *string, deps Dependencies) *SalesManager {
	return &SalesManager{
		sessionID:  sessionID,
		cashierID:  cashierID,
		tickets:    deps.TicketRepo,
		lines:      deps.LineRepo,
		products:   deps.ProductRepo,
		currencies: deps.CurrencyRepo,
		customers:  deps.CustomerRepo,
		converter:  deps.Converter,
		dispatcher: deps.Dispatcher,
	}
}

// CurrentTicket returns the selected ticket, or nil.
func (m *SalesManager) CurrentTicket() *domain.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticket
}

// SelectTicket loads a ticket and makes it current.
func (m *SalesManager) SelectTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, err := m.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	m.ticket = ticket
	m.notifyTotals(ctx)
	return ticket, nil
}

// Deselect clears the current ticket without deleting it.
func (m *SalesManager) Deselect(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticket = nil
	m.notifyTotals(ctx)
}

// NewTicket creates an open ticket with discount 0 and the default currency,
// tagged with the session's cashier, and selects it.
func (m *SalesManager) NewTicket(ctx context.Context) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, err := m.converter.Default(ctx)
	if err != nil {
		return nil, err
	}
	ticket := &domain.Ticket{
		Discount:  0,
		Currency:  *cur,
		CashierID: m.cashierID,
	}
	if err := m.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	m.ticket = ticket
	m.notifyTotals(ctx)
	return ticket, nil
}

// CancelTicket deletes the selected ticket and clears the selection. Only
// open tickets can be cancelled.
func (m *SalesManager) CancelTicket(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticket == nil {
		return util.NewNoTicketSelected()
	}
	if m.ticket.Closed() {
		return util.NewConflict("closed ticket cannot be cancelled", nil)
	}
	cancelled := m.ticket
	if err := m.tickets.Delete(ctx, cancelled.ID); err != nil {
		return err
	}
	m.ticket = nil
	m.publish(ctx, events.Event{
		Type:     events.EventTicketCancelled,
		TicketID: cancelled.ID,
		Payload:  events.TicketCancelledPayload{OpenedAt: cancelled.OpenedAt},
	})
	m.notifyTotals(ctx)
	return nil
}

// CloseTicket records payment and marks the ticket closed, decrementing stock
// for every stock-tracked product line. The stock side effect and the close
// transition commit together. Closing an already-closed ticket is a no-op.
func (m *SalesManager) CloseTicket(ctx context.Context, method domain.PaymentMethod, paid bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticket == nil {
		return util.NewNoTicketSelected()
	}
	if !method.Valid() {
		return util.NewValidationError("unknown payment method", map[string]any{"method": string(method)})
	}
	if m.ticket.Closed() {
		return nil
	}

	now := time.Now()
	priorPaidAt, priorMethod := m.ticket.PaidAt, m.ticket.PaymentMethod
	m.ticket.Pay(method, paid, now)
	m.ticket.MarkClosed(now)
	if err := m.tickets.Close(ctx, m.ticket); err != nil {
		m.ticket.Reopen()
		m.ticket.PaidAt = priorPaidAt
		m.ticket.PaymentMethod = priorMethod
		return err
	}

	m.publish(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: m.ticket.ID,
		Payload:  closedPayload(m.ticket, method, paid),
	})
	m.notifyTotals(ctx)
	return nil
}

// ReopenTicket clears the close timestamp on the selected ticket. Stock
// decremented at close time is not restored.
func (m *SalesManager) ReopenTicket(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticket == nil {
		return util.NewNoTicketSelected()
	}
	if !m.ticket.Closed() {
		return nil
	}
	m.ticket.Reopen()
	if err := m.tickets.Update(ctx, m.ticket); err != nil {
		return err
	}
	m.notifyTotals(ctx)
	return nil
}

// ListTickets returns all open tickets. No selection is required.
func (m *SalesManager) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	return m.tickets.ListOpen(ctx)
}

// ListCurrencies returns all configured currencies. No selection is required.
func (m *SalesManager) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	return m.currencies.List(ctx)
}

// ListCustomers returns the customer directory.
func (m *SalesManager) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return m.customers.List(ctx)
}

// PaymentMethods lists the accepted settlement methods.
func (m *SalesManager) PaymentMethods() []domain.PaymentMethod {
	return domain.PaymentMethods()
}

// IsDiscountAllowed reports whether the operator may apply discounts.
func (m *SalesManager) IsDiscountAllowed() bool {
	return true
}

// AddTicketLine creates a line on the selected ticket from an explicit field
// set. When a product is referenced, provenance is established first and the
// explicit fields may immediately flag the line edited.
func (m *SalesManager) AddTicketLine(ctx context.Context, input TicketLineInput) (*domain.TicketLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticket == nil {
		return nil, util.NewNoTicketSelected()
	}
	if err := validateLineInput(input); err != nil {
		return nil, err
	}

	line := domain.TicketLine{
		TicketID: m.ticket.ID,
		Quantity: input.Quantity,
		Discount: input.Discount,
		Tax:      input.Tax,
	}
	var product *domain.Product
	if input.ProductID != nil {
		p, err := m.loadProduct(ctx, *input.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, util.NewNotFound("product", map[string]any{"product_id": *input.ProductID})
		}
		product = p
		line.AssignProduct(product)
	}
	desc := input.Description
	if desc == "" && product != nil {
		desc = product.Name
	}
	price := input.UnitPrice
	line.Apply(domain.TicketLineUpdate{Description: &desc, UnitPrice: &price}, product)

	if err := m.lines.Create(ctx, &line); err != nil {
		return nil, err
	}
	m.ticket.Lines = append(m.ticket.Lines, line)
	m.notifyTotals(ctx)
	return m.ticket.Line(line.ID), nil
}

// EditTicketLine applies a partial update to an existing line. Driving the
// quantity to zero or below removes the line instead; a quantity-zero line is
// never retained.
func (m *SalesManager) EditTicketLine(ctx context.Context, lineID string, update domain.TicketLineUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticket == nil {
		return util.NewNoTicketSelected()
	}
	line := m.ticket.Line(lineID)
	if line == nil {
		return util.NewNotFound("ticket line", map[string]any{"line_id": lineID})
	}
	if err := validateLineUpdate(update); err != nil {
		return err
	}
	if update.Quantity != nil && *update.Quantity <= 0 {
		return m.deleteLine(ctx, line.ID)
	}

	var product *domain.Product
	if line.ProductID != nil {
		p, err := m.loadProduct(ctx, *line.ProductID)
		if err != nil {
			return err
		}
		product = p
	}
	line.Apply(update, product)
	if err := m.lines.Update(ctx, line); err != nil {
		return err
	}
	m.notifyTotals(ctx)
	return nil
}

// RemoveTicketLine deletes a line from the selected ticket.
func (m *SalesManager) RemoveTicketLine(ctx context.Context, lineID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticket == nil {
		return util.NewNoTicketSelected()
	}
	if m.ticket.Line(lineID) == nil {
		return util.NewNotFound("ticket line", map[string]any{"line_id": lineID})
	}
	return m.deleteLine(ctx, lineID)
}

// SetTicketLineAmount sets a line's quantity. Amounts at or below zero delete
// the line. Without force, a quantity beyond the linked product's tracked
// stock is rejected and the line is left untouched.
func (m *SalesManager) SetTicketLineAmount(ctx context.Context, lineID string, amount int, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticket == nil {
		return util.NewNoTicketSelected()
	}
	line := m.ticket.Line(lineID)
	if line == nil {
		return util.NewNotFound("ticket line", map[string]any{"line_id": lineID})
	}

	if amount <= 0 {
		return m.deleteLine(ctx, lineID)
	}

	if !force && line.ProductID != nil {
		product, err := m.loadProduct(ctx, *line.ProductID)
		if err != nil {
			return err
		}
		if product != nil && product.InStock && product.Quantity < amount {
			return util.NewInsufficientStock(product.ID, amount, product.Quantity)
		}
	}

	line.Quantity = amount
	if err := m.lines.Update(ctx, line); err != nil {
		return err
	}
	m.notifyTotals(ctx)
	return nil
}

// AddProduct sells one unit of a catalog product: an existing unedited line
// for the same product gains a unit, otherwise a new line is created at the
// product price converted into the ticket currency.
func (m *SalesManager) AddProduct(ctx context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticket == nil {
		return util.NewNoTicketSelected()
	}
	product, err := m.loadProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return util.NewNotFound("product", map[string]any{"product_id": productID})
	}

	existing, err := m.lines.FindUneditedByProduct(ctx, m.ticket.ID, product.ID)
	switch {
	case err == nil:
		line := m.ticket.Line(existing.ID)
		if line == nil {
			m.ticket.Lines = append(m.ticket.Lines, *existing)
			line = m.ticket.Line(existing.ID)
		}
		line.Quantity++
		if err := m.lines.Update(ctx, line); err != nil {
			return err
		}
	case errors.Is(err, pgx.ErrNoRows):
		price, err := m.converter.Convert(ctx, product.Price, product.CurrencyCode, m.ticket.Currency.Code)
		if err != nil {
			return err
		}
		line := domain.TicketLine{
			TicketID:  m.ticket.ID,
			UnitPrice: price,
			Quantity:  1,
			Discount:  0,
		}
		line.AssignProduct(product)
		if err := m.lines.Create(ctx, &line); err != nil {
			return err
		}
		m.ticket.Lines = append(m.ticket.Lines, line)
	default:
		return err
	}

	m.notifyTotals(ctx)
	return nil
}

// Discount returns the ticket discount percent, 0 when nothing is selected.
func (m *SalesManager) Discount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ticket == nil {
		return 0
	}
	return m.ticket.Discount
}

// SetDiscount sets the ticket-wide discount percent.
func (m *SalesManager) SetDiscount(ctx context.Context, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticket == nil {
		return util.NewNoTicketSelected()
	}
	if value < 0 || value > 100 {
		return util.NewValidationError("discount must be between 0 and 100", map[string]any{"discount": value})
	}
	m.ticket.Discount = value
	if err := m.tickets.Update(ctx, m.ticket); err != nil {
		return err
	}
	m.notifyTotals(ctx)
	return nil
}

// SetComment stores a free-form note on the selected ticket.
func (m *SalesManager) SetComment(ctx context.Context, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticket == nil {
		return util.NewNoTicketSelected()
	}
	m.ticket.Comment = comment
	if err := m.tickets.Update(ctx, m.ticket); err != nil {
		return err
	}
	m.notifyTotals(ctx)
	return nil
}

// Customer returns the selected ticket's customer, or nil.
func (m *SalesManager) Customer(ctx context.Context) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticket == nil || m.ticket.CustomerID == nil {
		return nil, nil
	}
	return m.customers.GetByID(ctx, *m.ticket.CustomerID)
}

// SetCustomer assigns a customer and applies their configured discount to the
// ticket; clearing the customer resets the discount to zero.
func (m *SalesManager) SetCustomer(ctx context.Context, customerID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticket == nil {
		return util.NewNoTicketSelected()
	}
	if customerID == nil {
		m.ticket.CustomerID = nil
		m.ticket.Discount = 0
	} else {
		customer, err := m.customers.GetByID(ctx, *customerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return util.NewNotFound("customer", map[string]any{"customer_id": *customerID})
			}
			return err
		}
		id := customer.ID
		m.ticket.CustomerID = &id
		m.ticket.Discount = customer.Discount
	}
	if err := m.tickets.Update(ctx, m.ticket); err != nil {
		return err
	}
	m.notifyTotals(ctx)
	return nil
}

// Currency resolves the session currency: the selected ticket's, else the
// manual override, else the system default.
func (m *SalesManager) Currency(ctx context.Context) (*domain.Currency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticket != nil {
		cur := m.ticket.Currency
		return &cur, nil
	}
	if m.override != nil {
		cur := *m.override
		return &cur, nil
	}
	return m.converter.Default(ctx)
}

// SetCurrency records the session currency override and, when a ticket is
// selected, re-prices it: with no lines only the currency tag changes, with
// lines every unit price is converted from the prior currency. A nil code
// falls back to the system default; no selection is required.
func (m *SalesManager) SetCurrency(ctx context.Context, code *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		target *domain.Currency
		err    error
	)
	if code == nil {
		target, err = m.converter.Default(ctx)
	} else {
		target, err = m.currencies.GetByCode(ctx, *code)
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("currency", map[string]any{"code": *code})
		}
	}
	if err != nil {
		return err
	}
	m.override = target

	if m.ticket == nil {
		return nil
	}

	prior := m.ticket.Currency
	if len(m.ticket.Lines) > 0 && !prior.Equal(*target) {
		converted := make([]decimal.Decimal, len(m.ticket.Lines))
		for i := range m.ticket.Lines {
			price, err := m.converter.Convert(ctx, m.ticket.Lines[i].UnitPrice, prior.Code, target.Code)
			if err != nil {
				return err
			}
			converted[i] = price
		}

		// commit the whole re-price before touching the aggregate, so a
		// storage failure never leaves a half-converted ticket
		repriced := *m.ticket
		repriced.Currency = *target
		repriced.Lines = append([]domain.TicketLine(nil), m.ticket.Lines...)
		for i := range repriced.Lines {
			repriced.Lines[i].UnitPrice = converted[i]
		}
		if err := m.tickets.Reprice(ctx, &repriced); err != nil {
			return err
		}

		m.ticket.Currency = *target
		for i := range m.ticket.Lines {
			// a conversion is not a manual edit, so the edited flag is
			// left alone and product merging keeps working afterwards
			m.ticket.Lines[i].UnitPrice = converted[i]
		}
	} else {
		retagged := *m.ticket
		retagged.Currency = *target
		if err := m.tickets.Update(ctx, &retagged); err != nil {
			return err
		}
		m.ticket.Currency = *target
	}
	m.notifyTotals(ctx)
	return nil
}

// Subtotal is the selected ticket's subtotal, zero with no selection.
func (m *SalesManager) Subtotal() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ticket == nil {
		return decimal.Zero
	}
	return m.ticket.Subtotal()
}

// Taxes is the selected ticket's tax sum, zero with no selection.
func (m *SalesManager) Taxes() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ticket == nil {
		return decimal.Zero
	}
	return m.ticket.Taxes()
}

// Total is the selected ticket's total, zero with no selection.
func (m *SalesManager) Total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ticket == nil {
		return decimal.Zero
	}
	return m.ticket.Total()
}

func (m *SalesManager) deleteLine(ctx context.Context, lineID string) error {
	if err := m.lines.Delete(ctx, lineID); err != nil {
		return err
	}
	m.ticket.RemoveLine(lineID)
	m.notifyTotals(ctx)
	return nil
}

// loadProduct resolves a product reference, treating a missing row as a stale
// link: historical lines survive product deletion.
func (m *SalesManager) loadProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := m.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return product, nil
}

func (m *SalesManager) notifyTotals(ctx context.Context) {
	payload := events.TotalsChangedPayload{
		Subtotal: decimal.Zero,
		Taxes:    decimal.Zero,
		Total:    decimal.Zero,
	}
	ticketID := ""
	if m.ticket != nil {
		payload.Subtotal = m.ticket.Subtotal()
		payload.Taxes = m.ticket.Taxes()
		payload.Total = m.ticket.Total()
		payload.Currency = m.ticket.Currency.Code
		ticketID = m.ticket.ID
	}
	m.publish(ctx, events.Event{
		Type:     events.EventTotalsChanged,
		TicketID: ticketID,
		Payload:  payload,
	})
}

func (m *SalesManager) publish(ctx context.Context, event events.Event) {
	if m.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.SessionID = m.sessionID
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = m.dispatcher.Publish(ctx, event)
}

func closedPayload(ticket *domain.Ticket, method domain.PaymentMethod, paid bool) events.TicketClosedPayload {
	receipt := events.TicketClosedPayload{
		PaymentMethod: method,
		Paid:          paid,
		Currency:      ticket.Currency.Code,
		Subtotal:      ticket.Subtotal(),
		Taxes:         ticket.Taxes(),
		Total:         ticket.Total(),
	}
	for i := range ticket.Lines {
		line := &ticket.Lines[i]
		receipt.Lines = append(receipt.Lines, events.ReceiptLine{
			Description: line.Description,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Discount:    line.Discount,
			Tax:         line.Tax,
			Total:       line.Total(),
		})
	}
	return receipt
}

func validateLineInput(input TicketLineInput) error {
	if input.Quantity <= 0 {
		return util.NewValidationError("quantity must be positive", map[string]any{"quantity": input.Quantity})
	}
	if input.Discount < 0 || input.Discount > 100 {
		return util.NewValidationError("discount must be between 0 and 100", map[string]any{"discount": input.Discount})
	}
	if input.UnitPrice.IsNegative() {
		return util.NewValidationError("unit price must not be negative", nil)
	}
	if input.Tax.IsNegative() {
		return util.NewValidationError("tax must not be negative", nil)
	}
	return nil
}

func validateLineUpdate(update domain.TicketLineUpdate) error {
	if update.Discount != nil && (*update.Discount < 0 || *update.Discount > 100) {
		return util.NewValidationError("discount must be between 0 and 100", map[string]any{"discount": *update.Discount})
	}
	if update.UnitPrice != nil && update.UnitPrice.IsNegative() {
		return util.NewValidationError("unit price must not be negative", nil)
	}
	if update.Tax != nil && update.Tax.IsNegative() {
		return util.NewValidationError("tax must not be negative", nil)
	}
	return nil
}
