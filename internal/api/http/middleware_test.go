package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coinbox/coinbox-mod-sales/internal/api/http/handlers"
	"github.com/coinbox/coinbox-mod-sales/internal/observability"
	"github.com/coinbox/coinbox-mod-sales/internal/service"
	"github.com/coinbox/coinbox-mod-sales/pkg/util"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 5*time.Second)

	registry := service.NewSessionRegistry(service.Dependencies{})
	RegisterRoutes(app, RouteConfig{
		Health:  handlers.NewHealthHandler("test", "dev", nil, nil),
		Sales:   handlers.NewSalesHandler(registry),
		Catalog: handlers.NewCatalogHandler(nil, nil, nil),
	})
	return app
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, resp *http.Response) errorEnvelope {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}

func TestMissingSessionHeaderRejected(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/sales/payment-methods", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	envelope := decodeError(t, resp)
	assert.Equal(t, util.CodeValidationFailed, envelope.Error.Code)
}

func TestPaymentMethodsEndpoint(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/sales/payment-methods", nil)
	req.Header.Set(handlers.SessionHeader, "till-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Contains(t, payload.Data, "cash")
	assert.Contains(t, payload.Data, "debt")
}

func TestNoTicketSelectedEnvelope(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodDelete, "/sales/tickets/current", nil)
	req.Header.Set(handlers.SessionHeader, "till-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	envelope := decodeError(t, resp)
	assert.Equal(t, util.CodeNoTicketSelected, envelope.Error.Code)
	assert.Equal(t, "no ticket selected", envelope.Error.Message)
}

func TestTotalsWithoutSelectionAreZero(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/sales/totals", nil)
	req.Header.Set(handlers.SessionHeader, "till-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload struct {
		Data struct {
			Subtotal string `json:"subtotal"`
			Taxes    string `json:"taxes"`
			Total    string `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "0", payload.Data.Subtotal)
	assert.Equal(t, "0", payload.Data.Total)
}

func TestHealthLive(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
