package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-ingestion/internal/actions"
	"github.com/feral-file/ff-ingestion/internal/adapter"
	"github.com/feral-file/ff-ingestion/internal/api/server"
	"github.com/feral-file/ff-ingestion/internal/bridge"
	"github.com/feral-file/ff-ingestion/internal/config"
	"github.com/feral-file/ff-ingestion/internal/ingestion"
	"github.com/feral-file/ff-ingestion/internal/logger"
	"github.com/feral-file/ff-ingestion/internal/messaging"
	"github.com/feral-file/ff-ingestion/internal/metrics"
	"github.com/feral-file/ff-ingestion/internal/processor"
	jsprovider "github.com/feral-file/ff-ingestion/internal/providers/jetstream"
	"github.com/feral-file/ff-ingestion/internal/store"
	"github.com/feral-file/ff-ingestion/internal/updater"
	"github.com/feral-file/ff-ingestion/internal/webhook"
)

const serviceName = "ingestion-worker"

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadIngestionWorkerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Share one sentry client between the logger core and the error tracker
	var sentryClient *sentry.Client
	if cfg.SentryDSN != "" {
		sentryClient, err = sentry.NewClient(sentry.ClientOptions{
			Dsn:   cfg.SentryDSN,
			Debug: cfg.Debug,
		})
		if err != nil {
			panic(fmt.Sprintf("Failed to create sentry client: %v", err))
		}
	}

	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		Service:         serviceName,
		SentryClient:    sentryClient,
		BreadcrumbLevel: zapcore.InfoLevel,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting ingestion worker")

	// Connect to database; unique violations surface as gorm.ErrDuplicatedKey
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	dataStore := store.NewPGStore(db)

	// Initialize adapters
	jsonAdapter := adapter.NewJSON()
	natsJS := adapter.NewNatsJetStream()
	clock := adapter.NewClock()
	errorTracker := adapter.NewSentryErrorTracker(sentry.NewHub(sentryClient, sentry.NewScope()))

	reg := prometheus.DefaultRegisterer
	m := metrics.New(reg)

	subjects := messaging.Subjects{
		PersonChanges:   cfg.NATS.Subjects.PersonChanges,
		GroupChanges:    cfg.NATS.Subjects.GroupChanges,
		DeadLetter:      cfg.NATS.Subjects.DeadLetter,
		AnalyticsEvents: cfg.NATS.Subjects.AnalyticsEvents,
	}
	jsCfg := jsprovider.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: cfg.NATS.ConnectionName,
		Subjects:       subjects,
	}

	publisher, err := jsprovider.NewPublisher(jsCfg, natsJS, jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create change publisher", zap.Error(err))
	}
	defer publisher.Close()
	logger.InfoCtx(ctx, "Connected to NATS", zap.String("url", cfg.NATS.URL))

	// Domain components
	entityUpdater := updater.New(dataStore, publisher, clock, m, updater.Config{
		MaxGroupUpsertAttempts: cfg.Ingestion.MaxGroupUpsertAttempts,
	})
	eventsProcessor := processor.New(dataStore, entityUpdater, publisher, jsonAdapter)
	matcher := actions.NewMatcher(dataStore)
	httpClient := adapter.NewHTTPClient(cfg.Webhook.Timeout, adapter.RetryPolicy{
		InitialInterval: cfg.Webhook.RetryInitialInterval,
		MaxInterval:     cfg.Webhook.RetryMaxInterval,
		MaxElapsedTime:  cfg.Webhook.RetryMaxElapsedTime,
	})
	hookCannon := webhook.NewHookCannon(dataStore, httpClient, adapter.NewJCS(jsonAdapter), jsonAdapter, clock, m, webhook.Config{
		BreakerFailureThreshold: cfg.Webhook.BreakerFailureThreshold,
		BreakerTimeout:          cfg.Webhook.BreakerTimeout,
		BreakerInterval:         cfg.Webhook.BreakerInterval,
		BreakerIdleTTL:          cfg.Webhook.BreakerIdleTTL,
	})

	ingester := ingestion.New(ingestion.Deps{
		Store:        dataStore,
		Processor:    eventsProcessor,
		Matcher:      matcher,
		HookCannon:   hookCannon,
		Publisher:    publisher,
		ErrorTracker: errorTracker,
		Clock:        clock,
		Metrics:      m,
	}, ingestion.Config{
		MaxTries:          cfg.Ingestion.MaxTries,
		InitialRetryDelay: cfg.Ingestion.InitialRetryDelay,
		TimeoutWarning:    cfg.Ingestion.TimeoutWarning,
		DeadLetterTimeout: cfg.Ingestion.DeadLetterTimeout,
		SiteURL:           cfg.Ingestion.SiteURL,
	})

	// Inbound events
	eventBridge, err := bridge.NewBridge(bridge.Config{
		JetStream:    jsCfg,
		ConsumerName: cfg.NATS.ConsumerName,
		Subject:      cfg.NATS.Subjects.Ingest,
		StreamSubjects: []string{
			cfg.NATS.Subjects.Ingest,
			subjects.PersonChanges,
			subjects.GroupChanges,
			subjects.DeadLetter,
			subjects.AnalyticsEvents,
		},
		AckWaitTimeout:      cfg.NATS.AckWait,
		MaxDeliver:          cfg.NATS.MaxDeliver,
		PoolSize:            cfg.Worker.WorkerPoolSize,
		QueueSize:           cfg.Worker.WorkerQueueSize,
		ShutdownGracePeriod: cfg.Worker.ShutdownGracePeriod,
	}, natsJS, ingester, jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create event bridge", zap.Error(err))
	}
	defer eventBridge.Close()
	logger.InfoCtx(ctx, "Event bridge created",
		zap.String("stream", cfg.NATS.StreamName),
		zap.String("consumer", cfg.NATS.ConsumerName),
		zap.String("subject", cfg.NATS.Subjects.Ingest),
	)

	// Health and metrics
	srv := server.New(server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}, reg, prometheus.DefaultGatherer, server.HealthRoutes(serviceName))

	errCh := make(chan error, 2)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- fmt.Errorf("server: %w", err)
		}
	}()
	bridgeDone := make(chan struct{})
	go func() {
		defer close(bridgeDone)
		if err := eventBridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("bridge: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.ErrorCtx(ctx, err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, zap.String("component", "server"))
	}

	// In-flight ingestions settle their messages before the connections close
	drainTimeout := cfg.Worker.ShutdownGracePeriod + cfg.Ingestion.DeadLetterTimeout
	select {
	case <-bridgeDone:
	case <-time.After(drainTimeout):
		logger.Warn("Timed out waiting for in-flight events", zap.Duration("timeout", drainTimeout))
	}

	logger.Info("Ingestion worker stopped")
}
