package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/simaogato/stockledger-backend/internal/adapter/cache"
	"github.com/simaogato/stockledger-backend/internal/adapter/httpapi"
	kafkaadapter "github.com/simaogato/stockledger-backend/internal/adapter/kafka"
	"github.com/simaogato/stockledger-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/stockledger-backend/internal/config"
	"github.com/simaogato/stockledger-backend/internal/usecase/denomination"
	"github.com/simaogato/stockledger-backend/internal/usecase/keylock"
	"github.com/simaogato/stockledger-backend/internal/usecase/ledger"
	"github.com/simaogato/stockledger-backend/internal/usecase/pricing"
	"github.com/simaogato/stockledger-backend/internal/usecase/rates"
	"github.com/simaogato/stockledger-backend/internal/usecase/registry"
)

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := newLogger(cfg.Logging)

	// 2. Setup database and run migrations
	if err := postgres.RunMigrations(cfg.Postgres.URL(), cfg.Postgres.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := postgres.NewDB(cfg.Postgres.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 3. Initialize repositories (Postgres)
	portfolioRepo := postgres.NewPortfolioRepository(db)
	instrumentRepo := postgres.NewInstrumentRepository(db)
	holdingRepo := postgres.NewHoldingRepository(db)
	tradeRepo := postgres.NewTradeRepository(db)
	priceRepo := postgres.NewPricePointRepository(db)

	// 4. Initialize valuation cache (Redis)
	redisCache, err := cache.NewRedisCache(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()
	valuationCache := cache.NewValuationCache(redisCache, cfg.Cache.TTL)

	// 5. Initialize services (use cases). The key lock is shared so the
	// ledger and pricing paths serialize on the same holdings.
	locks := keylock.New()
	converter := rates.NewTableConverter()

	ledgerService := ledger.NewLedgerService(portfolioRepo, holdingRepo, tradeRepo, converter, valuationCache, locks, log)
	pricingService := pricing.NewPricingService(priceRepo, holdingRepo, converter, valuationCache, locks, log)
	denominationService := denomination.NewDenominationService(portfolioRepo, instrumentRepo, holdingRepo, tradeRepo, priceRepo, converter, log)
	registryService := registry.NewRegistryService(portfolioRepo, instrumentRepo, holdingRepo)

	// 6. Start Kafka consumers when enabled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Kafka.Enabled {
		tradeConsumer := kafkaadapter.NewTradeConsumer(cfg.Kafka.Brokers, cfg.Kafka.TradesTopic, cfg.Kafka.GroupID, ledgerService, log)
		priceConsumer := kafkaadapter.NewPriceConsumer(cfg.Kafka.Brokers, cfg.Kafka.PricesTopic, cfg.Kafka.GroupID, pricingService, log)

		go func() {
			if err := tradeConsumer.Run(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Error("trade consumer stopped")
			}
		}()
		go func() {
			if err := priceConsumer.Run(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Error("price consumer stopped")
			}
		}()
	}

	// 7. Start HTTP server
	server := httpapi.NewServer(
		&httpapi.ServerConfig{
			Host:            cfg.Server.Host,
			Port:            cfg.Server.Port,
			AuthToken:       cfg.Auth.Token,
			RequestsPerSec:  cfg.Server.RequestsPerSec,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		},
		ledgerService,
		pricingService,
		denominationService,
		registryService,
		converter,
		log,
	)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP server: %v", err)
		}
	}()

	// Graceful shutdown
	waitForShutdown(server, cfg.Server.ShutdownTimeout, cancel, log)
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	return log
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *httpapi.Server, timeout time.Duration, cancel context.CancelFunc, log *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.WithField("signal", sig.String()).Info("shutting down gracefully")

	cancel()

	ctx, cancelTimeout := context.WithTimeout(context.Background(), timeout)
	defer cancelTimeout()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	log.Info("HTTP server stopped")
}
