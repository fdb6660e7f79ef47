package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/azizikri/coach-ledger/db/migrations"
	"github.com/azizikri/coach-ledger/internal/config"
	httphandler "github.com/azizikri/coach-ledger/internal/delivery/http"
	"github.com/azizikri/coach-ledger/internal/delivery/kafka"
	"github.com/azizikri/coach-ledger/internal/logger"
	"github.com/azizikri/coach-ledger/internal/metrics"
	"github.com/azizikri/coach-ledger/internal/repository"
	"github.com/azizikri/coach-ledger/internal/repository/memory"
	"github.com/azizikri/coach-ledger/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	decimal.MarshalJSONWithoutQuotes = true

	if err := run(cfg, log); err != nil {
		log.Error("service stopped", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	commissionRate := cfg.CommissionRate()
	deps := usecase.Deps{
		Store:   store,
		Metrics: m,
		Logger:  log,
		Options: usecase.Options{
			OperationTimeout:      cfg.LedgerOperationTimeout,
			MaxAttempts:           cfg.LedgerMaxAttempts,
			RetryBackoff:          cfg.LedgerRetryBackoff,
			DefaultCommissionRate: &commissionRate,
			PublicCoachID:         cfg.PublicCoachID,
			NotifyWorkers:         cfg.NotifyWorkers,
		},
	}

	var clients []*kgo.Client
	defer func() {
		for _, c := range clients {
			c.Close()
		}
	}()

	var producer *kgo.Client
	if cfg.EventDrivenEnabled {
		producer, err = newProducerClient(cfg.KafkaBrokers, cfg.KafkaClientID)
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		clients = append(clients, producer)

		if err := kafka.EnsureTopics(ctx, producer, cfg, log); err != nil {
			log.Warn("failed to ensure topics", "error", err)
		}
		deps.Notifier = kafka.NewPublisher(producer)
	}

	ledger := usecase.NewLedger(deps)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.EventDrivenEnabled {
		saleClient, err := newConsumerClient(cfg.KafkaBrokers, cfg.KafkaClientID+"-sales", cfg.KafkaGroupID, kafka.TopicSaleCompleted)
		if err != nil {
			return fmt.Errorf("create sale consumer: %w", err)
		}
		clients = append(clients, saleClient)

		retryClient, err := newConsumerClient(cfg.KafkaBrokers, cfg.KafkaClientID+"-retry", cfg.KafkaRetryGroupID, kafka.TopicSaleRetry)
		if err != nil {
			return fmt.Errorf("create retry consumer: %w", err)
		}
		clients = append(clients, retryClient)

		consumer := kafka.NewConsumer(cfg, saleClient, ledger.Earnings, m, log)
		retryConsumer := kafka.NewConsumer(cfg, retryClient, ledger.Earnings, m, log)
		g.Go(func() error {
			consumer.Start(gctx)
			return nil
		})
		g.Go(func() error {
			retryConsumer.StartRetry(gctx)
			return nil
		})
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	httphandler.NewHandler(ledger, log).Routes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		log.Info("starting server", "port", cfg.AppPort, "store", cfg.StoreDriver, "event_driven", cfg.EventDrivenEnabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		if err := ledger.Close(shutdownCtx); err != nil {
			log.Warn("pending notifications not delivered", "error", err)
		}
		return nil
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (repository.Store, func(), error) {
	if strings.EqualFold(cfg.StoreDriver, "memory") {
		log.Warn("using in-memory store; balances are lost on restart")
		return memory.New(), func() {}, nil
	}

	if cfg.DBMigrate {
		if err := repository.RunMigrations(cfg.MigrateDSN(), migrations.FS); err != nil {
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	pool, err := initDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return repository.New(pool), pool.Close, nil
}

func initDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

func newProducerClient(brokers []string, clientID string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
}

func newConsumerClient(brokers []string, clientID, groupID string, topics ...string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
	)
}
