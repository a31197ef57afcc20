package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/stockledger-backend/internal/domain"
)

// holdingRepository implements domain.HoldingRepository
type holdingRepository struct {
	db *DB
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *DB) domain.HoldingRepository {
	return &holdingRepository{db: db}
}

const holdingColumns = `
	id, portfolio_id, instrument_id, currency, quantity_held,
	cash_in, cash_in_at, cash_out, cash_out_at,
	fees, fees_at, market_value, market_value_at
`

// scanHolding reads one holding row. The four money amounts are stored as
// DECIMAL and scanned as strings; each carries its own timestamp column.
func scanHolding(scan func(dest ...interface{}) error) (*domain.HoldingAggregate, error) {
	var holding domain.HoldingAggregate
	var cashInStr, cashOutStr, feesStr, marketValueStr string
	var cashInAt, cashOutAt, feesAt, marketValueAt time.Time

	err := scan(
		&holding.ID,
		&holding.PortfolioID,
		&holding.InstrumentID,
		&holding.Currency,
		&holding.QuantityHeld,
		&cashInStr, &cashInAt,
		&cashOutStr, &cashOutAt,
		&feesStr, &feesAt,
		&marketValueStr, &marketValueAt,
	)
	if err != nil {
		return nil, err
	}

	fields := []struct {
		raw  string
		at   time.Time
		dest *domain.Money
	}{
		{cashInStr, cashInAt, &holding.CashIn},
		{cashOutStr, cashOutAt, &holding.CashOut},
		{feesStr, feesAt, &holding.Fees},
		{marketValueStr, marketValueAt, &holding.MarketValue},
	}
	for _, f := range fields {
		amount, err := decimal.NewFromString(f.raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse money amount: %w", err)
		}
		*f.dest = domain.Money{Amount: amount, Currency: holding.Currency, Timestamp: f.at}
	}

	return &holding, nil
}

// GetByKey retrieves the holding for one (portfolio, instrument) pair
func (r *holdingRepository) GetByKey(ctx context.Context, portfolioID, instrumentID uuid.UUID) (*domain.HoldingAggregate, error) {
	query := `
		SELECT ` + holdingColumns + `
		FROM holdings
		WHERE portfolio_id = $1 AND instrument_id = $2
	`

	row := r.db.QueryRowContext(ctx, query, portfolioID, instrumentID)
	holding, err := scanHolding(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("holding %s/%s: %w", portfolioID, instrumentID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}

	return holding, nil
}

// ListByPortfolio retrieves all holdings of a portfolio
func (r *holdingRepository) ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*domain.HoldingAggregate, error) {
	query := `
		SELECT ` + holdingColumns + `
		FROM holdings
		WHERE portfolio_id = $1
	`

	return r.queryHoldings(ctx, query, portfolioID)
}

// ListActiveByInstrument retrieves all holdings that currently hold units of
// the instrument. Closed positions are filtered out in the query.
func (r *holdingRepository) ListActiveByInstrument(ctx context.Context, instrumentID uuid.UUID) ([]*domain.HoldingAggregate, error) {
	query := `
		SELECT ` + holdingColumns + `
		FROM holdings
		WHERE instrument_id = $1 AND quantity_held <> 0
	`

	return r.queryHoldings(ctx, query, instrumentID)
}

// CountByInstrument counts holdings referencing the instrument, active or not
func (r *holdingRepository) CountByInstrument(ctx context.Context, instrumentID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM holdings
		WHERE instrument_id = $1
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, instrumentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count holdings: %w", err)
	}

	return count, nil
}

// Save upserts a holding aggregate keyed on its (portfolio, instrument) pair
func (r *holdingRepository) Save(ctx context.Context, h *domain.HoldingAggregate) error {
	query := `
		INSERT INTO holdings (
			id, portfolio_id, instrument_id, currency, quantity_held,
			cash_in, cash_in_at, cash_out, cash_out_at,
			fees, fees_at, market_value, market_value_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (portfolio_id, instrument_id) DO UPDATE SET
			currency = EXCLUDED.currency,
			quantity_held = EXCLUDED.quantity_held,
			cash_in = EXCLUDED.cash_in,
			cash_in_at = EXCLUDED.cash_in_at,
			cash_out = EXCLUDED.cash_out,
			cash_out_at = EXCLUDED.cash_out_at,
			fees = EXCLUDED.fees,
			fees_at = EXCLUDED.fees_at,
			market_value = EXCLUDED.market_value,
			market_value_at = EXCLUDED.market_value_at
	`

	_, err := r.db.ExecContext(ctx, query,
		h.ID,
		h.PortfolioID,
		h.InstrumentID,
		h.Currency,
		h.QuantityHeld,
		h.CashIn.Amount.String(), h.CashIn.Timestamp,
		h.CashOut.Amount.String(), h.CashOut.Timestamp,
		h.Fees.Amount.String(), h.Fees.Timestamp,
		h.MarketValue.Amount.String(), h.MarketValue.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save holding: %w", err)
	}

	return nil
}

func (r *holdingRepository) queryHoldings(ctx context.Context, query string, args ...interface{}) ([]*domain.HoldingAggregate, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*domain.HoldingAggregate
	for rows.Next() {
		holding, err := scanHolding(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, holding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return holdings, nil
}
