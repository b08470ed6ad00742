package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/coinbox/coinbox-mod-sales/internal/config"
	"github.com/coinbox/coinbox-mod-sales/internal/domain"
)

const cacheKeyPrefix = "sales:currency:"

// RateSource resolves currencies by code. The currency repository satisfies it.
type RateSource interface {
	GetByCode(ctx context.Context, code string) (*domain.Currency, error)
}

// Converter converts monetary amounts between currencies and exposes the
// process-wide default currency. Lookups go through a Redis cache when one
// is configured.
type Converter struct {
	source      RateSource
	cache       *redis.Client
	ttl         time.Duration
	defaultCode string
	logger      *zap.Logger
}

// NewConverter builds a converter over the given rate source.
func NewConverter(source RateSource, cache *redis.Client, cfg config.SalesConfig, logger *zap.Logger) *Converter {
	return &Converter{
		source:      source,
		cache:       cache,
		ttl:         cfg.RateCacheTTL(),
		defaultCode: cfg.DefaultCurrency,
		logger:      logger,
	}
}

// Default returns the system-wide fallback currency.
func (c *Converter) Default(ctx context.Context) (*domain.Currency, error) {
	return c.Lookup(ctx, c.defaultCode)
}

// Lookup resolves a currency by code, consulting the cache first.
func (c *Converter) Lookup(ctx context.Context, code string) (*domain.Currency, error) {
	if cached := c.fromCache(ctx, code); cached != nil {
		return cached, nil
	}
	cur, err := c.source.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	c.toCache(ctx, cur)
	return cur, nil
}

// Convert translates an amount from one currency to another through the base
// rate. Same-code conversions return the amount unchanged.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	if fromCode == toCode {
		return amount, nil
	}
	from, err := c.Lookup(ctx, fromCode)
	if err != nil {
		return decimal.Zero, err
	}
	to, err := c.Lookup(ctx, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	if from.Rate.IsZero() {
		return decimal.Zero, fmt.Errorf("currency %s has no exchange rate", from.Code)
	}
	return amount.Div(from.Rate).Mul(to.Rate), nil
}

func (c *Converter) fromCache(ctx context.Context, code string) *domain.Currency {
	if c.cache == nil {
		return nil
	}
	payload, err := c.cache.Get(ctx, cacheKeyPrefix+code).Bytes()
	if err != nil {
		return nil
	}
	var cur domain.Currency
	if err := json.Unmarshal(payload, &cur); err != nil {
		return nil
	}
	return &cur
}

func (c *Converter) toCache(ctx context.Context, cur *domain.Currency) {
	if c.cache == nil || cur == nil {
		return
	}
	payload, err := json.Marshal(cur)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, cacheKeyPrefix+cur.Code, payload, c.ttl).Err(); err != nil {
		c.logger.Debug("rate cache write failed", zap.String("code", cur.Code), zap.Error(err))
	}
}
