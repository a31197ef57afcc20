package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/stockledger-backend/internal/domain"
)

// instrumentRepository implements domain.InstrumentRepository
type instrumentRepository struct {
	db *DB
}

// NewInstrumentRepository creates a new instrument repository
func NewInstrumentRepository(db *DB) domain.InstrumentRepository {
	return &instrumentRepository{db: db}
}

// GetByID retrieves an instrument by its ID
func (r *instrumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Instrument, error) {
	query := `
		SELECT id, symbol, name, currency
		FROM instruments
		WHERE id = $1
	`

	var instrument domain.Instrument
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&instrument.ID,
		&instrument.Symbol,
		&instrument.Name,
		&instrument.Currency,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("instrument %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get instrument by ID: %w", err)
	}

	return &instrument, nil
}

// Create creates a new instrument
func (r *instrumentRepository) Create(ctx context.Context, i *domain.Instrument) error {
	query := `
		INSERT INTO instruments (id, symbol, name, currency)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, i.ID, i.Symbol, i.Name, i.Currency)
	if err != nil {
		return fmt.Errorf("failed to create instrument: %w", err)
	}

	return nil
}

// UpdateCurrency updates the instrument's currency code
func (r *instrumentRepository) UpdateCurrency(ctx context.Context, id uuid.UUID, currency string) error {
	query := `
		UPDATE instruments
		SET currency = $2
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, currency)
	if err != nil {
		return fmt.Errorf("failed to update instrument currency: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("instrument %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// List retrieves all instruments
func (r *instrumentRepository) List(ctx context.Context) ([]*domain.Instrument, error) {
	query := `
		SELECT id, symbol, name, currency
		FROM instruments
		ORDER BY symbol
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	defer rows.Close()

	var instruments []*domain.Instrument
	for rows.Next() {
		var instrument domain.Instrument
		if err := rows.Scan(&instrument.ID, &instrument.Symbol, &instrument.Name, &instrument.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan instrument: %w", err)
		}
		instruments = append(instruments, &instrument)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate instruments: %w", err)
	}

	return instruments, nil
}

// Delete removes an instrument
func (r *instrumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM instruments
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete instrument: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("instrument %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
