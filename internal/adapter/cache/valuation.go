package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/simaogato/stockledger-backend/internal/domain"
)

// ErrCacheMiss is returned when no valuation is cached for the key.
var ErrCacheMiss = errors.New("valuation not cached")

// Valuation is the cached read-model of one holding's current worth.
type Valuation struct {
	PortfolioID  uuid.UUID       `json:"portfolio_id"`
	InstrumentID uuid.UUID       `json:"instrument_id"`
	Currency     string          `json:"currency"`
	QuantityHeld int64           `json:"quantity_held"`
	MarketValue  decimal.Decimal `json:"market_value"`
	AsOf         time.Time       `json:"as_of"`
}

// ValuationCache stores holding valuations in Redis with a TTL. Writers to a
// holding invalidate its entry; the read path repopulates on the next query.
// Entries that escape invalidation expire on their own.
type ValuationCache struct {
	cache *RedisCache
	ttl   time.Duration
}

// NewValuationCache creates a new valuation cache
func NewValuationCache(cache *RedisCache, ttl time.Duration) *ValuationCache {
	return &ValuationCache{cache: cache, ttl: ttl}
}

func valuationKey(portfolioID, instrumentID uuid.UUID) string {
	return fmt.Sprintf("valuation:%s:%s", portfolioID, instrumentID)
}

// Get retrieves a cached valuation. Returns ErrCacheMiss when absent.
func (c *ValuationCache) Get(ctx context.Context, portfolioID, instrumentID uuid.UUID) (*Valuation, error) {
	raw, err := c.cache.Get(ctx, valuationKey(portfolioID, instrumentID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read valuation from cache: %w", err)
	}

	var v Valuation
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("failed to decode cached valuation: %w", err)
	}
	return &v, nil
}

// Set stores a holding's valuation
func (c *ValuationCache) Set(ctx context.Context, h *domain.HoldingAggregate) error {
	v := Valuation{
		PortfolioID:  h.PortfolioID,
		InstrumentID: h.InstrumentID,
		Currency:     h.Currency,
		QuantityHeld: h.QuantityHeld,
		MarketValue:  h.MarketValue.Amount,
		AsOf:         h.MarketValue.Timestamp,
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode valuation: %w", err)
	}

	return c.cache.Set(ctx, valuationKey(h.PortfolioID, h.InstrumentID), payload, c.ttl)
}

// Invalidate drops the cached valuation for one holding
func (c *ValuationCache) Invalidate(ctx context.Context, portfolioID, instrumentID uuid.UUID) error {
	return c.cache.Del(ctx, valuationKey(portfolioID, instrumentID))
}
