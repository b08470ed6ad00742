package currency

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coinbox/coinbox-mod-sales/internal/config"
	"github.com/coinbox/coinbox-mod-sales/internal/domain"
)

type fakeRateSource struct {
	currencies map[string]domain.Currency
	lookups    int
}

func (f *fakeRateSource) GetByCode(_ context.Context, code string) (*domain.Currency, error) {
	f.lookups++
	cur, ok := f.currencies[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &cur, nil
}

func newTestConverter() (*Converter, *fakeRateSource) {
	source := &fakeRateSource{currencies: map[string]domain.Currency{
		"USD": {ID: "usd", Code: "USD", Rate: decimal.NewFromInt(1)},
		"EUR": {ID: "eur", Code: "EUR", Rate: decimal.RequireFromString("0.8")},
		"XXX": {ID: "xxx", Code: "XXX", Rate: decimal.Zero},
	}}
	cfg := config.SalesConfig{DefaultCurrency: "USD", RateCacheTTLSeconds: 60}
	return NewConverter(source, nil, cfg, zap.NewNop()), source
}

func TestConvertSameCodeIsIdentity(t *testing.T) {
	conv, source := newTestConverter()

	amount := decimal.RequireFromString("12.34")
	got, err := conv.Convert(context.Background(), amount, "EUR", "EUR")
	require.NoError(t, err)
	assert.True(t, got.Equal(amount))
	assert.Zero(t, source.lookups)
}

func TestConvertThroughBaseRate(t *testing.T) {
	conv, _ := newTestConverter()

	got, err := conv.Convert(context.Background(), decimal.NewFromInt(10), "USD", "EUR")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("8")), "got %s", got)

	back, err := conv.Convert(context.Background(), got, "EUR", "USD")
	require.NoError(t, err)
	assert.True(t, back.Equal(decimal.NewFromInt(10)), "got %s", back)
}

func TestConvertUnknownCurrency(t *testing.T) {
	conv, _ := newTestConverter()

	_, err := conv.Convert(context.Background(), decimal.NewFromInt(1), "USD", "BRL")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestConvertZeroRateFails(t *testing.T) {
	conv, _ := newTestConverter()

	_, err := conv.Convert(context.Background(), decimal.NewFromInt(1), "XXX", "USD")
	assert.ErrorContains(t, err, "no exchange rate")
}

func TestDefaultCurrency(t *testing.T) {
	conv, _ := newTestConverter()

	cur, err := conv.Default(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "USD", cur.Code)
}

func TestLookupHitsSourceWithoutCache(t *testing.T) {
	conv, source := newTestConverter()

	for i := 0; i < 3; i++ {
		_, err := conv.Lookup(context.Background(), "EUR")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, source.lookups)
}
