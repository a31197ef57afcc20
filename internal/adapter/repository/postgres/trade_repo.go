package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/stockledger-backend/internal/domain"
)

// tradeRepository implements domain.TradeRepository
type tradeRepository struct {
	db *DB
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db *DB) domain.TradeRepository {
	return &tradeRepository{db: db}
}

// Create stores a new trade event
func (r *tradeRepository) Create(ctx context.Context, t *domain.TradeEvent) error {
	query := `
		INSERT INTO trades (id, portfolio_id, instrument_id, side, quantity, unit_price, fee, currency, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.PortfolioID,
		t.InstrumentID,
		string(t.Side),
		t.Quantity,
		t.UnitPrice.Amount.String(),
		t.Fee.Amount.String(),
		t.UnitPrice.Currency,
		t.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}

	return nil
}

// ListByHolding retrieves the full trade history of one (portfolio,
// instrument) pair ordered by execution time
func (r *tradeRepository) ListByHolding(ctx context.Context, portfolioID, instrumentID uuid.UUID) ([]*domain.TradeEvent, error) {
	query := `
		SELECT id, portfolio_id, instrument_id, side, quantity, unit_price, fee, currency, executed_at
		FROM trades
		WHERE portfolio_id = $1 AND instrument_id = $2
		ORDER BY executed_at
	`

	return r.queryTrades(ctx, query, portfolioID, instrumentID)
}

// ListByPortfolio retrieves all trades of a portfolio ordered by execution time
func (r *tradeRepository) ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*domain.TradeEvent, error) {
	query := `
		SELECT id, portfolio_id, instrument_id, side, quantity, unit_price, fee, currency, executed_at
		FROM trades
		WHERE portfolio_id = $1
		ORDER BY executed_at
	`

	return r.queryTrades(ctx, query, portfolioID)
}

// Update rewrites a stored trade. Used by the currency cascade; the trade
// history is otherwise append-only.
func (r *tradeRepository) Update(ctx context.Context, t *domain.TradeEvent) error {
	query := `
		UPDATE trades
		SET unit_price = $2, fee = $3, currency = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.UnitPrice.Amount.String(),
		t.Fee.Amount.String(),
		t.UnitPrice.Currency,
	)
	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("trade %s: %w", t.ID, domain.ErrNotFound)
	}

	return nil
}

func (r *tradeRepository) queryTrades(ctx context.Context, query string, args ...interface{}) ([]*domain.TradeEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []*domain.TradeEvent
	for rows.Next() {
		var trade domain.TradeEvent
		var unitPriceStr, feeStr, currency string
		var executedAt time.Time

		err := rows.Scan(
			&trade.ID,
			&trade.PortfolioID,
			&trade.InstrumentID,
			&trade.Side,
			&trade.Quantity,
			&unitPriceStr,
			&feeStr,
			&currency,
			&executedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		unitPrice, err := decimal.NewFromString(unitPriceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse unit_price: %w", err)
		}
		fee, err := decimal.NewFromString(feeStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fee: %w", err)
		}

		trade.UnitPrice = domain.Money{Amount: unitPrice, Currency: currency, Timestamp: executedAt}
		trade.Fee = domain.Money{Amount: fee, Currency: currency, Timestamp: executedAt}
		trade.Timestamp = executedAt
		trades = append(trades, &trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trades: %w", err)
	}

	return trades, nil
}
