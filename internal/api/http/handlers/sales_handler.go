package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/coinbox/coinbox-mod-sales/internal/api/dto"
	"github.com/coinbox/coinbox-mod-sales/internal/domain"
	"github.com/coinbox/coinbox-mod-sales/internal/service"
	"github.com/coinbox/coinbox-mod-sales/pkg/util"
)

// SessionHeader identifies the cashier session a request acts for.
const SessionHeader = "X-Session-ID"

// CashierHeader optionally tags the acting cashier on new sessions.
const CashierHeader = "X-Cashier-ID"

// SalesHandler exposes the sales manager operations over HTTP.
type SalesHandler struct {
	registry *service.SessionRegistry
}

// NewSalesHandler constructs handler.
func NewSalesHandler(registry *service.SessionRegistry) *SalesHandler {
	return &SalesHandler{registry: registry}
}

func (h *SalesHandler) manager(c *fiber.Ctx) (*service.SalesManager, error) {
	// headers outlive the request here, so copy them out of fiber's buffers
	sessionID := strings.Clone(c.Get(SessionHeader))
	if sessionID == "" {
		return nil, util.NewValidationError(SessionHeader+" header required", nil)
	}
	var cashierID *string
	if cashier := strings.Clone(c.Get(CashierHeader)); cashier != "" {
		cashierID = &cashier
	}
	return h.registry.Manager(sessionID, cashierID), nil
}

// NewTicket POST /sales/tickets.
func (h *SalesHandler) NewTicket(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	ticket, err := manager.NewTicket(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /sales/tickets.
func (h *SalesHandler) ListTickets(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	tickets, err := manager.ListTickets(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SelectTicket POST /sales/tickets/select.
func (h *SalesHandler) SelectTicket(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	var req dto.SelectTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.TicketID == "" {
		return util.NewValidationError("ticket_id required", nil)
	}
	ticket, err := manager.SelectTicket(c.UserContext(), req.TicketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// CurrentTicket GET /sales/tickets/current.
func (h *SalesHandler) CurrentTicket(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	ticket := manager.CurrentTicket()
	if ticket == nil {
		return util.NewNoTicketSelected()
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// CancelTicket DELETE /sales/tickets/current.
func (h *SalesHandler) CancelTicket(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	if err := manager.CancelTicket(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CloseTicket POST /sales/tickets/current/close.
func (h *SalesHandler) CloseTicket(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	var req dto.CloseTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := manager.CloseTicket(c.UserContext(), domain.PaymentMethod(req.Method), req.Paid); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(manager.CurrentTicket())})
}

// ReopenTicket POST /sales/tickets/current/reopen.
func (h *SalesHandler) ReopenTicket(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	if err := manager.ReopenTicket(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(manager.CurrentTicket())})
}

// AddLine POST /sales/tickets/current/lines.
func (h *SalesHandler) AddLine(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	var req dto.CreateLineRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	line, err := manager.AddTicketLine(c.UserContext(), service.TicketLineInput{
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		Quantity:    req.Quantity,
		Discount:    req.Discount,
		Tax:         req.Tax,
		ProductID:   req.ProductID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": lineResponse(line)})
}

// EditLine PATCH /sales/tickets/current/lines/:id.
func (h *SalesHandler) EditLine(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	var req dto.UpdateLineRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	update := domain.TicketLineUpdate{
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		Quantity:    req.Quantity,
		Discount:    req.Discount,
		Tax:         req.Tax,
	}
	if err := manager.EditTicketLine(c.UserContext(), c.Params("id"), update); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(manager.CurrentTicket())})
}

// RemoveLine DELETE /sales/tickets/current/lines/:id.
func (h *SalesHandler) RemoveLine(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	if err := manager.RemoveTicketLine(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetLineAmount PUT /sales/tickets/current/lines/:id/amount.
func (h *SalesHandler) SetLineAmount(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	var req dto.SetLineAmountRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := manager.SetTicketLineAmount(c.UserContext(), c.Params("id"), req.Amount, req.Force); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(manager.CurrentTicket())})
}

// AddProduct POST /sales/tickets/current/products.
func (h *SalesHandler) AddProduct(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	var req dto.AddProductRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.ProductID == "" {
		return util.NewValidationError("product_id required", nil)
	}
	if err := manager.AddProduct(c.UserContext(), req.ProductID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(manager.CurrentTicket())})
}

// SetDiscount PUT /sales/tickets/current/discount.
func (h *SalesHandler) SetDiscount(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	var req dto.SetDiscountRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := manager.SetDiscount(c.UserContext(), req.Discount); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(manager.CurrentTicket())})
}

// SetComment PUT /sales/tickets/current/comment.
func (h *SalesHandler) SetComment(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	var req dto.SetCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := manager.SetComment(c.UserContext(), req.Comment); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(manager.CurrentTicket())})
}

// SetCustomer PUT /sales/tickets/current/customer.
func (h *SalesHandler) SetCustomer(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	var req dto.SetCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := manager.SetCustomer(c.UserContext(), req.CustomerID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(manager.CurrentTicket())})
}

// SetCurrency PUT /sales/currency.
func (h *SalesHandler) SetCurrency(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	var req dto.SetCurrencyRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := manager.SetCurrency(c.UserContext(), req.Code); err != nil {
		return err
	}
	cur, err := manager.Currency(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": currencyResponse(cur)})
}

// GetCurrency GET /sales/currency.
func (h *SalesHandler) GetCurrency(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	cur, err := manager.Currency(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": currencyResponse(cur)})
}

// Totals GET /sales/totals.
func (h *SalesHandler) Totals(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	resp := dto.TotalsResponse{
		Subtotal: manager.Subtotal(),
		Taxes:    manager.Taxes(),
		Total:    manager.Total(),
	}
	if ticket := manager.CurrentTicket(); ticket != nil {
		resp.Currency = ticket.Currency.Code
	}
	return c.JSON(fiber.Map{"data": resp})
}

// PaymentMethods GET /sales/payment-methods.
func (h *SalesHandler) PaymentMethods(c *fiber.Ctx) error {
	manager, err := h.manager(c)
	if err != nil {
		return err
	}
	methods := manager.PaymentMethods()
	items := make([]string, 0, len(methods))
	for _, method := range methods {
		items = append(items, string(method))
	}
	return c.JSON(fiber.Map{"data": items})
}

func ticketResponse(t *domain.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:         t.ID,
		Display:    t.Display(),
		OpenedAt:   t.OpenedAt,
		ClosedAt:   t.ClosedAt,
		PaidAt:     t.PaidAt,
		Comment:    t.Comment,
		Discount:   t.Discount,
		Currency:   t.Currency.Code,
		CustomerID: t.CustomerID,
		CashierID:  t.CashierID,
		Lines:      make([]dto.TicketLineResponse, 0, len(t.Lines)),
		Subtotal:   t.Subtotal(),
		Taxes:      t.Taxes(),
		Total:      t.Total(),
	}
	if t.PaymentMethod != nil {
		method := string(*t.PaymentMethod)
		resp.PaymentMethod = &method
	}
	for i := range t.Lines {
		resp.Lines = append(resp.Lines, lineResponse(&t.Lines[i]))
	}
	return resp
}

func lineResponse(l *domain.TicketLine) dto.TicketLineResponse {
	return dto.TicketLineResponse{
		ID:          l.ID,
		Description: l.Description,
		UnitPrice:   l.UnitPrice,
		Quantity:    l.Quantity,
		Discount:    l.Discount,
		Tax:         l.Tax,
		IsEdited:    l.IsEdited,
		ProductID:   l.ProductID,
		Subtotal:    l.Subtotal(),
		Total:       l.Total(),
	}
}

func currencyResponse(c *domain.Currency) dto.CurrencyResponse {
	return dto.CurrencyResponse{
		Code:   c.Code,
		Name:   c.Name,
		Symbol: c.Symbol,
		Digits: c.Digits,
		Rate:   c.Rate,
	}
}
