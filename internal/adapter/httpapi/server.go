// Package httpapi provides the HTTP API server implementation.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/stockledger-backend/internal/domain"
)

// Service interfaces for dependency injection and testing

// LedgerServiceInterface defines the interface for trade ledger operations
type LedgerServiceInterface interface {
	RecordTrade(ctx context.Context, t *domain.TradeEvent) (*domain.HoldingAggregate, error)
	ReplayHolding(ctx context.Context, portfolioID, instrumentID uuid.UUID) (*domain.HoldingAggregate, error)
	GetHolding(ctx context.Context, portfolioID, instrumentID uuid.UUID) (*domain.HoldingAggregate, error)
	ListHoldings(ctx context.Context, portfolioID uuid.UUID) ([]*domain.HoldingAggregate, error)
}

// PricingServiceInterface defines the interface for price series operations
type PricingServiceInterface interface {
	ReportPrice(ctx context.Context, instrumentID uuid.UUID, observed domain.Money) (domain.ReportOutcome, error)
	LatestPrice(ctx context.Context, instrumentID uuid.UUID) (domain.Money, error)
}

// DenominationServiceInterface defines the interface for currency changes
type DenominationServiceInterface interface {
	SetPortfolioCurrency(ctx context.Context, portfolioID uuid.UUID, newCurrency string) error
	SetInstrumentCurrency(ctx context.Context, instrumentID uuid.UUID, newCurrency string) error
}

// RegistryServiceInterface defines the interface for entity management
type RegistryServiceInterface interface {
	CreatePortfolio(ctx context.Context, name, currency string) (*domain.Portfolio, error)
	GetPortfolio(ctx context.Context, id uuid.UUID) (*domain.Portfolio, error)
	ListPortfolios(ctx context.Context) ([]*domain.Portfolio, error)
	CreateInstrument(ctx context.Context, symbol, name, currency string) (*domain.Instrument, error)
	GetInstrument(ctx context.Context, id uuid.UUID) (*domain.Instrument, error)
	ListInstruments(ctx context.Context) ([]*domain.Instrument, error)
	DeleteInstrument(ctx context.Context, id uuid.UUID) error
}

// RateTableInterface defines the interface for exchange rate registration
type RateTableInterface interface {
	SetRate(from, to string, rate decimal.Decimal, effective time.Time) error
}

// Server represents the HTTP API server.
type Server struct {
	router       *mux.Router
	httpServer   *http.Server
	ledger       LedgerServiceInterface
	pricing      PricingServiceInterface
	denomination DenominationServiceInterface
	registry     RegistryServiceInterface
	rates        RateTableInterface
	config       *ServerConfig
	log          *logrus.Logger
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	AuthToken       string
	RequestsPerSec  int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	ledger LedgerServiceInterface,
	pricing PricingServiceInterface,
	denomination DenominationServiceInterface,
	registry RegistryServiceInterface,
	rates RateTableInterface,
	log *logrus.Logger,
) *Server {
	if log == nil {
		log = logrus.New()
	}
	s := &Server{
		router:       mux.NewRouter(),
		ledger:       ledger,
		pricing:      pricing,
		denomination: denomination,
		registry:     registry,
		rates:        rates,
		config:       config,
		log:          log,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	s.router.Use(LoggingMiddleware(s.log))
	s.router.Use(RecoveryMiddleware(s.log))
	s.router.Use(RateLimitMiddleware(NewRateLimiter(s.config.RequestsPerSec)))

	s.setupRoutes()

	readTimeout := s.config.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := s.config.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 15 * time.Second
	}
	idleTimeout := s.config.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// API v1 routes, token-protected
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(AuthMiddleware(s.config.AuthToken))

	// Portfolio endpoints
	api.HandleFunc("/portfolios", s.handleCreatePortfolio).Methods("POST")
	api.HandleFunc("/portfolios", s.handleListPortfolios).Methods("GET")
	api.HandleFunc("/portfolios/{id}", s.handleGetPortfolio).Methods("GET")
	api.HandleFunc("/portfolios/{id}/currency", s.handleSetPortfolioCurrency).Methods("PUT")
	api.HandleFunc("/portfolios/{id}/holdings", s.handleListHoldings).Methods("GET")
	api.HandleFunc("/portfolios/{id}/holdings/{instrumentID}", s.handleGetHolding).Methods("GET")
	api.HandleFunc("/portfolios/{id}/holdings/{instrumentID}/replay", s.handleReplayHolding).Methods("POST")

	// Instrument endpoints
	api.HandleFunc("/instruments", s.handleCreateInstrument).Methods("POST")
	api.HandleFunc("/instruments", s.handleListInstruments).Methods("GET")
	api.HandleFunc("/instruments/{id}", s.handleGetInstrument).Methods("GET")
	api.HandleFunc("/instruments/{id}", s.handleDeleteInstrument).Methods("DELETE")
	api.HandleFunc("/instruments/{id}/currency", s.handleSetInstrumentCurrency).Methods("PUT")
	api.HandleFunc("/instruments/{id}/prices", s.handleReportPrice).Methods("POST")
	api.HandleFunc("/instruments/{id}/prices/latest", s.handleLatestPrice).Methods("GET")

	// Trade endpoints
	api.HandleFunc("/trades", s.handleRecordTrade).Methods("POST")

	// Exchange rate endpoints
	api.HandleFunc("/rates", s.handleSetRate).Methods("POST")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "stockledger",
	})
}

// Handler exposes the router. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
