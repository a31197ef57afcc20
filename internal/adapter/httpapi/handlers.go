package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/simaogato/stockledger-backend/internal/domain"
)

type createPortfolioRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

type createInstrumentRequest struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

type setCurrencyRequest struct {
	Currency string `json:"currency"`
}

type recordTradeRequest struct {
	PortfolioID  uuid.UUID       `json:"portfolio_id"`
	InstrumentID uuid.UUID       `json:"instrument_id"`
	Side         string          `json:"side"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Fee          decimal.Decimal `json:"fee"`
	Currency     string          `json:"currency"`
	ExecutedAt   time.Time       `json:"executed_at"`
}

type reportPriceRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	ObservedAt time.Time       `json:"observed_at"`
}

type setRateRequest struct {
	From        string          `json:"from"`
	To          string          `json:"to"`
	Rate        decimal.Decimal `json:"rate"`
	EffectiveAt time.Time       `json:"effective_at"`
}

type holdingResponse struct {
	PortfolioID   uuid.UUID       `json:"portfolio_id"`
	InstrumentID  uuid.UUID       `json:"instrument_id"`
	Currency      string          `json:"currency"`
	QuantityHeld  int64           `json:"quantity_held"`
	CashIn        decimal.Decimal `json:"cash_in"`
	CashOut       decimal.Decimal `json:"cash_out"`
	Fees          decimal.Decimal `json:"fees"`
	MarketValue   decimal.Decimal `json:"market_value"`
	MarketValueAt time.Time       `json:"market_value_at"`
}

type priceResponse struct {
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	ObservedAt time.Time       `json:"observed_at"`
}

func toHoldingResponse(h *domain.HoldingAggregate) holdingResponse {
	return holdingResponse{
		PortfolioID:   h.PortfolioID,
		InstrumentID:  h.InstrumentID,
		Currency:      h.Currency,
		QuantityHeld:  h.QuantityHeld,
		CashIn:        h.CashIn.Amount,
		CashOut:       h.CashOut.Amount,
		Fees:          h.Fees.Amount,
		MarketValue:   h.MarketValue.Amount,
		MarketValueAt: h.MarketValue.Timestamp,
	}
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	return id, err == nil
}

// handleCreatePortfolio handles POST /api/portfolios
func (s *Server) handleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req createPortfolioRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}

	portfolio, err := s.registry.CreatePortfolio(r.Context(), req.Name, req.Currency)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, portfolio)
}

// handleListPortfolios handles GET /api/portfolios
func (s *Server) handleListPortfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := s.registry.ListPortfolios(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, portfolios)
}

// handleGetPortfolio handles GET /api/portfolios/{id}
func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid portfolio ID")
		return
	}

	portfolio, err := s.registry.GetPortfolio(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, portfolio)
}

// handleSetPortfolioCurrency handles PUT /api/portfolios/{id}/currency
func (s *Server) handleSetPortfolioCurrency(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid portfolio ID")
		return
	}

	var req setCurrencyRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}

	if err := s.denomination.SetPortfolioCurrency(r.Context(), id, req.Currency); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListHoldings handles GET /api/portfolios/{id}/holdings
func (s *Server) handleListHoldings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid portfolio ID")
		return
	}

	holdings, err := s.ledger.ListHoldings(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	response := make([]holdingResponse, 0, len(holdings))
	for _, h := range holdings {
		response = append(response, toHoldingResponse(h))
	}
	respondJSON(w, http.StatusOK, response)
}

// handleGetHolding handles GET /api/portfolios/{id}/holdings/{instrumentID}
func (s *Server) handleGetHolding(w http.ResponseWriter, r *http.Request) {
	portfolioID, ok := pathUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid portfolio ID")
		return
	}
	instrumentID, ok := pathUUID(r, "instrumentID")
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid instrument ID")
		return
	}

	holding, err := s.ledger.GetHolding(r.Context(), portfolioID, instrumentID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toHoldingResponse(holding))
}

// handleReplayHolding handles POST /api/portfolios/{id}/holdings/{instrumentID}/replay
func (s *Server) handleReplayHolding(w http.ResponseWriter, r *http.Request) {
	portfolioID, ok := pathUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid portfolio ID")
		return
	}
	instrumentID, ok := pathUUID(r, "instrumentID")
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid instrument ID")
		return
	}

	holding, err := s.ledger.ReplayHolding(r.Context(), portfolioID, instrumentID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toHoldingResponse(holding))
}

// handleCreateInstrument handles POST /api/instruments
func (s *Server) handleCreateInstrument(w http.ResponseWriter, r *http.Request) {
	var req createInstrumentRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}

	instrument, err := s.registry.CreateInstrument(r.Context(), req.Symbol, req.Name, req.Currency)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, instrument)
}

// handleListInstruments handles GET /api/instruments
func (s *Server) handleListInstruments(w http.ResponseWriter, r *http.Request) {
	instruments, err := s.registry.ListInstruments(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, instruments)
}

// handleGetInstrument handles GET /api/instruments/{id}
func (s *Server) handleGetInstrument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid instrument ID")
		return
	}

	instrument, err := s.registry.GetInstrument(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, instrument)
}

// handleDeleteInstrument handles DELETE /api/instruments/{id}
func (s *Server) handleDeleteInstrument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid instrument ID")
		return
	}

	if err := s.registry.DeleteInstrument(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleSetInstrumentCurrency handles PUT /api/instruments/{id}/currency
func (s *Server) handleSetInstrumentCurrency(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid instrument ID")
		return
	}

	var req setCurrencyRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}

	if err := s.denomination.SetInstrumentCurrency(r.Context(), id, req.Currency); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleReportPrice handles POST /api/instruments/{id}/prices
func (s *Server) handleReportPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid instrument ID")
		return
	}

	var req reportPriceRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}
	if !domain.ValidCurrency(req.Currency) {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "unknown currency code")
		return
	}
	if req.ObservedAt.IsZero() {
		req.ObservedAt = time.Now().UTC()
	}

	observed := domain.Money{Amount: req.Amount, Currency: req.Currency, Timestamp: req.ObservedAt}
	outcome, err := s.pricing.ReportPrice(r.Context(), id, observed)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	var status string
	switch outcome {
	case domain.ReportCreated:
		status = "created"
	case domain.ReportUpdated:
		status = "updated"
	default:
		status = "unchanged"
	}
	respondJSON(w, http.StatusOK, map[string]string{"outcome": status})
}

// handleLatestPrice handles GET /api/instruments/{id}/prices/latest
func (s *Server) handleLatestPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid instrument ID")
		return
	}

	latest, err := s.pricing.LatestPrice(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, priceResponse{
		Amount:     latest.Amount,
		Currency:   latest.Currency,
		ObservedAt: latest.Timestamp,
	})
}

// handleRecordTrade handles POST /api/trades
func (s *Server) handleRecordTrade(w http.ResponseWriter, r *http.Request) {
	var req recordTradeRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}
	if req.ExecutedAt.IsZero() {
		req.ExecutedAt = time.Now().UTC()
	}

	trade := &domain.TradeEvent{
		ID:           uuid.New(),
		PortfolioID:  req.PortfolioID,
		InstrumentID: req.InstrumentID,
		Side:         domain.TradeSide(req.Side),
		Quantity:     req.Quantity,
		UnitPrice:    domain.Money{Amount: req.UnitPrice, Currency: req.Currency, Timestamp: req.ExecutedAt},
		Fee:          domain.Money{Amount: req.Fee, Currency: req.Currency, Timestamp: req.ExecutedAt},
		Timestamp:    req.ExecutedAt,
	}
	if err := trade.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
		return
	}

	holding, err := s.ledger.RecordTrade(r.Context(), trade)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toHoldingResponse(holding))
}

// handleSetRate handles POST /api/rates
func (s *Server) handleSetRate(w http.ResponseWriter, r *http.Request) {
	var req setRateRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}
	if req.EffectiveAt.IsZero() {
		req.EffectiveAt = time.Now().UTC()
	}

	if err := s.rates.SetRate(req.From, req.To, req.Rate, req.EffectiveAt); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
