// Package kafka provides the event intake for trades and price updates.
// Each topic is consumed sequentially per partition, which preserves the
// per-holding ordering the ledger requires as long as producers key
// messages by (portfolio, instrument).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/stockledger-backend/internal/domain"
)

type tradeMessage struct {
	ID           uuid.UUID       `json:"id"`
	PortfolioID  uuid.UUID       `json:"portfolio_id"`
	InstrumentID uuid.UUID       `json:"instrument_id"`
	Side         string          `json:"side"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Fee          decimal.Decimal `json:"fee"`
	Currency     string          `json:"currency"`
	ExecutedAt   time.Time       `json:"executed_at"`
}

type priceMessage struct {
	InstrumentID uuid.UUID       `json:"instrument_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	ObservedAt   time.Time       `json:"observed_at"`
}

func decodeTrade(payload []byte) (*domain.TradeEvent, error) {
	var msg tradeMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode trade message: %w", err)
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.ExecutedAt.IsZero() {
		msg.ExecutedAt = time.Now().UTC()
	}

	trade := &domain.TradeEvent{
		ID:           msg.ID,
		PortfolioID:  msg.PortfolioID,
		InstrumentID: msg.InstrumentID,
		Side:         domain.TradeSide(msg.Side),
		Quantity:     msg.Quantity,
		UnitPrice:    domain.Money{Amount: msg.UnitPrice, Currency: msg.Currency, Timestamp: msg.ExecutedAt},
		Fee:          domain.Money{Amount: msg.Fee, Currency: msg.Currency, Timestamp: msg.ExecutedAt},
		Timestamp:    msg.ExecutedAt,
	}
	if err := trade.Validate(); err != nil {
		return nil, err
	}
	return trade, nil
}

func decodePrice(payload []byte) (uuid.UUID, domain.Money, error) {
	var msg priceMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return uuid.Nil, domain.Money{}, fmt.Errorf("failed to decode price message: %w", err)
	}
	if msg.InstrumentID == uuid.Nil {
		return uuid.Nil, domain.Money{}, fmt.Errorf("price message is missing instrument_id")
	}
	if !domain.ValidCurrency(msg.Currency) {
		return uuid.Nil, domain.Money{}, fmt.Errorf("price message carries unknown currency %q", msg.Currency)
	}
	if msg.ObservedAt.IsZero() {
		msg.ObservedAt = time.Now().UTC()
	}

	return msg.InstrumentID, domain.Money{
		Amount:    msg.Amount,
		Currency:  msg.Currency,
		Timestamp: msg.ObservedAt,
	}, nil
}

func newReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1e3,
		MaxBytes: 1e6,
		MaxWait:  500 * time.Millisecond,
	})
}

// TradeConsumer feeds trade events from Kafka into the ledger.
type TradeConsumer struct {
	Reader  *kafka.Reader
	Handler domain.TradeEventHandler
	Log     *logrus.Logger
}

// NewTradeConsumer creates a consumer for the trades topic
func NewTradeConsumer(brokers []string, topic, groupID string, handler domain.TradeEventHandler, log *logrus.Logger) *TradeConsumer {
	if log == nil {
		log = logrus.New()
	}
	return &TradeConsumer{
		Reader:  newReader(brokers, topic, groupID),
		Handler: handler,
		Log:     log,
	}
}

// Run consumes until the context is cancelled. Malformed messages are
// logged and skipped; handler failures are logged but do not stop
// consumption.
func (c *TradeConsumer) Run(ctx context.Context) error {
	defer c.Reader.Close()
	for {
		m, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		trade, err := decodeTrade(m.Value)
		if err != nil {
			c.Log.WithError(err).Warn("dropping bad trade message")
			continue
		}

		if err := c.Handler.HandleTradeCreated(ctx, trade); err != nil {
			c.Log.WithError(err).WithField("trade_id", trade.ID).Error("failed to apply trade")
		} else {
			c.Log.WithField("trade_id", trade.ID).Debug("trade applied")
		}
	}
}

// PriceConsumer feeds price observations from Kafka into the price series.
type PriceConsumer struct {
	Reader  *kafka.Reader
	Handler domain.PriceEventHandler
	Log     *logrus.Logger
}

// NewPriceConsumer creates a consumer for the prices topic
func NewPriceConsumer(brokers []string, topic, groupID string, handler domain.PriceEventHandler, log *logrus.Logger) *PriceConsumer {
	if log == nil {
		log = logrus.New()
	}
	return &PriceConsumer{
		Reader:  newReader(brokers, topic, groupID),
		Handler: handler,
		Log:     log,
	}
}

// Run consumes until the context is cancelled.
func (c *PriceConsumer) Run(ctx context.Context) error {
	defer c.Reader.Close()
	for {
		m, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		instrumentID, observed, err := decodePrice(m.Value)
		if err != nil {
			c.Log.WithError(err).Warn("dropping bad price message")
			continue
		}

		if err := c.Handler.HandlePriceUpdated(ctx, instrumentID, observed); err != nil {
			c.Log.WithError(err).WithField("instrument_id", instrumentID).Error("failed to apply price update")
		}
	}
}
