package domain

import (
	"context"

	"github.com/google/uuid"
)

// PortfolioRepository defines the interface for portfolio persistence operations
type PortfolioRepository interface {
	// GetByID retrieves a portfolio by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Portfolio, error)

	// Create creates a new portfolio
	Create(ctx context.Context, p *Portfolio) error

	// UpdateCurrency sets the portfolio's currency code. It is invoked as
	// the last step of a currency cascade, after every dependent succeeded.
	UpdateCurrency(ctx context.Context, id uuid.UUID, currency string) error

	// List retrieves all portfolios
	List(ctx context.Context) ([]*Portfolio, error)
}

// InstrumentRepository defines the interface for instrument persistence operations
type InstrumentRepository interface {
	// GetByID retrieves an instrument by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Instrument, error)

	// Create creates a new instrument
	Create(ctx context.Context, i *Instrument) error

	// UpdateCurrency sets the instrument's currency code
	UpdateCurrency(ctx context.Context, id uuid.UUID, currency string) error

	// Delete removes an instrument. Callers must first verify that no
	// holding references it.
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves all instruments
	List(ctx context.Context) ([]*Instrument, error)
}

// HoldingRepository defines the interface for holding aggregate persistence operations
type HoldingRepository interface {
	// GetByKey retrieves the aggregate for a (portfolio, instrument) pair
	GetByKey(ctx context.Context, portfolioID, instrumentID uuid.UUID) (*HoldingAggregate, error)

	// ListByPortfolio retrieves all aggregates owned by a portfolio
	ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*HoldingAggregate, error)

	// ListActiveByInstrument retrieves the aggregates referencing an
	// instrument whose held quantity is non-zero
	ListActiveByInstrument(ctx context.Context, instrumentID uuid.UUID) ([]*HoldingAggregate, error)

	// CountByInstrument returns how many aggregates reference an instrument
	CountByInstrument(ctx context.Context, instrumentID uuid.UUID) (int, error)

	// Save upserts the aggregate state
	Save(ctx context.Context, h *HoldingAggregate) error
}

// TradeRepository defines the interface for trade persistence operations.
// Trades are append-only history; Update exists solely for the currency
// cascade, which re-denominates the stored money fields.
type TradeRepository interface {
	// Create appends a new trade
	Create(ctx context.Context, t *TradeEvent) error

	// ListByHolding retrieves the full history for a (portfolio, instrument)
	// pair in ascending timestamp order
	ListByHolding(ctx context.Context, portfolioID, instrumentID uuid.UUID) ([]*TradeEvent, error)

	// ListByPortfolio retrieves all trades of a portfolio in ascending
	// timestamp order
	ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*TradeEvent, error)

	// Update rewrites the money fields of an existing trade
	Update(ctx context.Context, t *TradeEvent) error
}

// PricePointRepository defines the interface for price series persistence operations
type PricePointRepository interface {
	// SeriesByInstrument loads the full price series of an instrument,
	// including its currency. The series may be empty.
	SeriesByInstrument(ctx context.Context, instrumentID uuid.UUID) (*PriceSeries, error)

	// Save upserts one price point (one row per instrument and date)
	Save(ctx context.Context, p *PricePoint) error

	// SaveAll upserts a batch of points, used by the currency cascade
	SaveAll(ctx context.Context, points []PricePoint) error
}
