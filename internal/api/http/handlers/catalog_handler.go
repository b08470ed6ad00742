package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/coinbox/coinbox-mod-sales/internal/api/dto"
	"github.com/coinbox/coinbox-mod-sales/internal/domain"
	"github.com/coinbox/coinbox-mod-sales/internal/repository"
	"github.com/coinbox/coinbox-mod-sales/pkg/util"
)

// CatalogHandler serves the read-only lookup endpoints the register UI
// needs to build a ticket: products, currencies and customers.
type CatalogHandler struct {
	products   repository.ProductRepository
	currencies repository.CurrencyRepository
	customers  repository.CustomerRepository
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(products repository.ProductRepository, currencies repository.CurrencyRepository, customers repository.CustomerRepository) *CatalogHandler {
	return &CatalogHandler{products: products, currencies: currencies, customers: customers}
}

// ListProducts returns a page of the product catalog.
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	products, err := h.products.List(c.Context(), limit, offset)
	if err != nil {
		return util.ToDomainError(err)
	}

	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, productResponse(&products[i]))
	}
	return c.JSON(fiber.Map{"products": out, "limit": limit, "offset": offset})
}

// GetProduct returns a single product by id.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.products.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return util.ToDomainError(err)
	}
	return c.JSON(productResponse(product))
}

// ListCurrencies returns every configured currency.
func (h *CatalogHandler) ListCurrencies(c *fiber.Ctx) error {
	currencies, err := h.currencies.List(c.Context())
	if err != nil {
		return util.ToDomainError(err)
	}

	out := make([]dto.CurrencyResponse, 0, len(currencies))
	for i := range currencies {
		out = append(out, currencyResponse(&currencies[i]))
	}
	return c.JSON(fiber.Map{"currencies": out})
}

// ListCustomers returns every registered customer.
func (h *CatalogHandler) ListCustomers(c *fiber.Ctx) error {
	customers, err := h.customers.List(c.Context())
	if err != nil {
		return util.ToDomainError(err)
	}

	out := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, customerResponse(&customers[i]))
	}
	return c.JSON(fiber.Map{"customers": out})
}

func productResponse(p *domain.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Reference: p.Reference,
		Price:     p.Price,
		Currency:  p.CurrencyCode,
		InStock:   p.InStock,
		Quantity:  p.Quantity,
	}
}

func customerResponse(cu *domain.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:       cu.ID,
		Name:     cu.Name,
		Email:    cu.Email,
		Phone:    cu.Phone,
		Discount: cu.Discount,
	}
}
