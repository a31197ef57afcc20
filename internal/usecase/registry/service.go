package registry

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/stockledger-backend/internal/domain"
)

// RegistryService manages the portfolio and instrument entities themselves.
// The aggregation engine only ever sees entities that went through the
// validation here.
type RegistryService struct {
	PortfolioRepo  domain.PortfolioRepository
	InstrumentRepo domain.InstrumentRepository
	HoldingRepo    domain.HoldingRepository
}

// NewRegistryService creates a new RegistryService instance.
func NewRegistryService(
	portfolioRepo domain.PortfolioRepository,
	instrumentRepo domain.InstrumentRepository,
	holdingRepo domain.HoldingRepository,
) *RegistryService {
	return &RegistryService{
		PortfolioRepo:  portfolioRepo,
		InstrumentRepo: instrumentRepo,
		HoldingRepo:    holdingRepo,
	}
}

// CreatePortfolio validates and stores a new portfolio.
func (s *RegistryService) CreatePortfolio(ctx context.Context, name, currency string) (*domain.Portfolio, error) {
	p := &domain.Portfolio{ID: uuid.New(), Name: name, Currency: currency}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.PortfolioRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateInstrument validates and stores a new instrument.
func (s *RegistryService) CreateInstrument(ctx context.Context, symbol, name, currency string) (*domain.Instrument, error) {
	i := &domain.Instrument{ID: uuid.New(), Symbol: symbol, Name: name, Currency: currency}
	if err := i.Validate(); err != nil {
		return nil, err
	}
	if err := s.InstrumentRepo.Create(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// DeleteInstrument removes an instrument. Deletion is forbidden while any
// holding aggregate still references it (regardless of whether the holding
// is active).
func (s *RegistryService) DeleteInstrument(ctx context.Context, id uuid.UUID) error {
	count, err := s.HoldingRepo.CountByInstrument(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d holdings reference instrument %s", domain.ErrInstrumentInUse, count, id)
	}
	return s.InstrumentRepo.Delete(ctx, id)
}

// GetPortfolio retrieves a portfolio by ID.
func (s *RegistryService) GetPortfolio(ctx context.Context, id uuid.UUID) (*domain.Portfolio, error) {
	return s.PortfolioRepo.GetByID(ctx, id)
}

// GetInstrument retrieves an instrument by ID.
func (s *RegistryService) GetInstrument(ctx context.Context, id uuid.UUID) (*domain.Instrument, error) {
	return s.InstrumentRepo.GetByID(ctx, id)
}

// ListPortfolios retrieves all portfolios.
func (s *RegistryService) ListPortfolios(ctx context.Context) ([]*domain.Portfolio, error) {
	return s.PortfolioRepo.List(ctx)
}

// ListInstruments retrieves all instruments.
func (s *RegistryService) ListInstruments(ctx context.Context) ([]*domain.Instrument, error) {
	return s.InstrumentRepo.List(ctx)
}
