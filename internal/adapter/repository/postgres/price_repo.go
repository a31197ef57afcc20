package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/stockledger-backend/internal/domain"
)

// pricePointRepository implements domain.PricePointRepository
type pricePointRepository struct {
	db *DB
}

// NewPricePointRepository creates a new price point repository
func NewPricePointRepository(db *DB) domain.PricePointRepository {
	return &pricePointRepository{db: db}
}

// SeriesByInstrument loads the full price series of an instrument. The
// series currency is owned by the instrument row, so an unknown instrument
// is an error even though an empty series is not.
func (r *pricePointRepository) SeriesByInstrument(ctx context.Context, instrumentID uuid.UUID) (*domain.PriceSeries, error) {
	var currency string
	err := r.db.QueryRowContext(ctx,
		`SELECT currency FROM instruments WHERE id = $1`,
		instrumentID,
	).Scan(&currency)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("instrument %s: %w", instrumentID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get instrument currency: %w", err)
	}

	query := `
		SELECT id, instrument_id, amount, observed_at
		FROM price_points
		WHERE instrument_id = $1
		ORDER BY observed_at
	`

	rows, err := r.db.QueryContext(ctx, query, instrumentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query price points: %w", err)
	}
	defer rows.Close()

	series := &domain.PriceSeries{InstrumentID: instrumentID, Currency: currency}
	for rows.Next() {
		var point domain.PricePoint
		var amountStr string

		if err := rows.Scan(&point.ID, &point.InstrumentID, &amountStr, &point.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price amount: %w", err)
		}
		point.Amount = amount
		series.Points = append(series.Points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price points: %w", err)
	}

	return series, nil
}

// Save upserts one price point. Intraday updates reuse the point's ID, so
// the conflict target is the primary key.
func (r *pricePointRepository) Save(ctx context.Context, p *domain.PricePoint) error {
	query := `
		INSERT INTO price_points (id, instrument_id, amount, observed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			amount = EXCLUDED.amount,
			observed_at = EXCLUDED.observed_at
	`

	_, err := r.db.ExecContext(ctx, query, p.ID, p.InstrumentID, p.Amount.String(), p.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to save price point: %w", err)
	}

	return nil
}

// SaveAll upserts every point of a series. Used by the currency cascade.
func (r *pricePointRepository) SaveAll(ctx context.Context, points []domain.PricePoint) error {
	for i := range points {
		if err := r.Save(ctx, &points[i]); err != nil {
			return err
		}
	}
	return nil
}
