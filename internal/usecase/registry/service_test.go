package registry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/stockledger-backend/internal/domain"
)

// MockPortfolioRepository is a mock implementation of PortfolioRepository for testing
type MockPortfolioRepository struct {
	mock.Mock
}

func (m *MockPortfolioRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Portfolio, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Portfolio), args.Error(1)
}

func (m *MockPortfolioRepository) Create(ctx context.Context, p *domain.Portfolio) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPortfolioRepository) UpdateCurrency(ctx context.Context, id uuid.UUID, currency string) error {
	args := m.Called(ctx, id, currency)
	return args.Error(0)
}

func (m *MockPortfolioRepository) List(ctx context.Context) ([]*domain.Portfolio, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Portfolio), args.Error(1)
}

// MockInstrumentRepository is a mock implementation of InstrumentRepository for testing
type MockInstrumentRepository struct {
	mock.Mock
}

func (m *MockInstrumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Instrument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Instrument), args.Error(1)
}

func (m *MockInstrumentRepository) Create(ctx context.Context, i *domain.Instrument) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

func (m *MockInstrumentRepository) UpdateCurrency(ctx context.Context, id uuid.UUID, currency string) error {
	args := m.Called(ctx, id, currency)
	return args.Error(0)
}

func (m *MockInstrumentRepository) List(ctx context.Context) ([]*domain.Instrument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Instrument), args.Error(1)
}

func (m *MockInstrumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockHoldingRepository is a mock implementation of HoldingRepository for testing
type MockHoldingRepository struct {
	mock.Mock
}

func (m *MockHoldingRepository) GetByKey(ctx context.Context, portfolioID, instrumentID uuid.UUID) (*domain.HoldingAggregate, error) {
	args := m.Called(ctx, portfolioID, instrumentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HoldingAggregate), args.Error(1)
}

func (m *MockHoldingRepository) ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*domain.HoldingAggregate, error) {
	args := m.Called(ctx, portfolioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HoldingAggregate), args.Error(1)
}

func (m *MockHoldingRepository) ListActiveByInstrument(ctx context.Context, instrumentID uuid.UUID) ([]*domain.HoldingAggregate, error) {
	args := m.Called(ctx, instrumentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HoldingAggregate), args.Error(1)
}

func (m *MockHoldingRepository) CountByInstrument(ctx context.Context, instrumentID uuid.UUID) (int, error) {
	args := m.Called(ctx, instrumentID)
	return args.Int(0), args.Error(1)
}

func (m *MockHoldingRepository) Save(ctx context.Context, h *domain.HoldingAggregate) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func TestCreatePortfolio(t *testing.T) {
	ctx := context.Background()
	portfolioRepo := new(MockPortfolioRepository)

	service := NewRegistryService(portfolioRepo, new(MockInstrumentRepository), new(MockHoldingRepository))

	portfolioRepo.On("Create", ctx, mock.AnythingOfType("*domain.Portfolio")).Return(nil)

	p, err := service.CreatePortfolio(ctx, "Retirement", "EUR")

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "Retirement", p.Name)
	portfolioRepo.AssertExpectations(t)
}

func TestCreatePortfolio_InvalidCurrency(t *testing.T) {
	ctx := context.Background()
	portfolioRepo := new(MockPortfolioRepository)

	service := NewRegistryService(portfolioRepo, new(MockInstrumentRepository), new(MockHoldingRepository))

	_, err := service.CreatePortfolio(ctx, "Retirement", "XYZ123")

	assert.Error(t, err)
	portfolioRepo.AssertNotCalled(t, "Create")
}

func TestCreateInstrument(t *testing.T) {
	ctx := context.Background()
	instrumentRepo := new(MockInstrumentRepository)

	service := NewRegistryService(new(MockPortfolioRepository), instrumentRepo, new(MockHoldingRepository))

	instrumentRepo.On("Create", ctx, mock.AnythingOfType("*domain.Instrument")).Return(nil)

	i, err := service.CreateInstrument(ctx, "ACME", "Acme Corp", "USD")

	require.NoError(t, err)
	assert.Equal(t, "ACME", i.Symbol)
	instrumentRepo.AssertExpectations(t)
}

func TestDeleteInstrument_BlockedWhileReferenced(t *testing.T) {
	ctx := context.Background()
	instrumentRepo := new(MockInstrumentRepository)
	holdingRepo := new(MockHoldingRepository)

	service := NewRegistryService(new(MockPortfolioRepository), instrumentRepo, holdingRepo)

	id := uuid.New()
	holdingRepo.On("CountByInstrument", ctx, id).Return(2, nil)

	err := service.DeleteInstrument(ctx, id)

	assert.ErrorIs(t, err, domain.ErrInstrumentInUse)
	instrumentRepo.AssertNotCalled(t, "Delete")
}

func TestDeleteInstrument_Unreferenced(t *testing.T) {
	ctx := context.Background()
	instrumentRepo := new(MockInstrumentRepository)
	holdingRepo := new(MockHoldingRepository)

	service := NewRegistryService(new(MockPortfolioRepository), instrumentRepo, holdingRepo)

	id := uuid.New()
	holdingRepo.On("CountByInstrument", ctx, id).Return(0, nil)
	instrumentRepo.On("Delete", ctx, id).Return(nil)

	err := service.DeleteInstrument(ctx, id)

	require.NoError(t, err)
	instrumentRepo.AssertExpectations(t)
}
