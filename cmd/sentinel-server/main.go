package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx as database/sql driver
	"github.com/meridiancredit/sentinel/internal/api"
	"github.com/meridiancredit/sentinel/internal/chread"
	"github.com/meridiancredit/sentinel/internal/config"
	"github.com/meridiancredit/sentinel/internal/engine"
	"github.com/meridiancredit/sentinel/internal/engine/assessors"
	"github.com/meridiancredit/sentinel/internal/history"
	"github.com/meridiancredit/sentinel/internal/metrics"
	"github.com/meridiancredit/sentinel/internal/storage"
	"github.com/meridiancredit/sentinel/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := mustBuildLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck // best-effort flush

	logger.Info("starting sentinel server",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.Float64("threshold_medium", cfg.ThresholdMedium),
		zap.Float64("threshold_high", cfg.ThresholdHigh),
	)

	// Thresholds are fixed for the lifetime of the process.
	thresholds := engine.Thresholds{
		Low:    cfg.ThresholdLow,
		Medium: cfg.ThresholdMedium,
		High:   cfg.ThresholdHigh,
	}
	if err := thresholds.Validate(); err != nil {
		logger.Fatal("invalid thresholds", zap.Error(err))
	}
	resolver := engine.NewResolver(thresholds)

	// Postgres pool (history reads, audit trail, client store)
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open postgres", zap.Error(err))
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(context.Background()); err != nil {
		logger.Fatal("failed to ping postgres", zap.Error(err))
	}
	logger.Info("postgres connected")

	pgStore := store.NewStore(db)
	hist := history.NewPostgresAccessor(db)
	audit := storage.NewPostgresAudit(db)

	// Engine — signal sets wired up here, like the audit recorder
	eng := engine.NewRiskEngine(
		assessors.ForLogin(),
		assessors.ForTransaction(),
		hist,
		audit,
		logger,
	)

	// Analytics mirror — ClickHouse or log fallback
	ctx := context.Background()
	var stream storage.AnalyticsStream
	var chReader *chread.Reader
	if cfg.ClickHouseAddr != "" {
		chStream, err := storage.NewClickHouseStream(ctx, cfg.ClickHouseAddr,
			cfg.ClickHouseDatabase, cfg.ClickHouseUser, cfg.ClickHousePassword, logger)
		if err != nil {
			logger.Warn("clickhouse connection failed, falling back to log stream", zap.Error(err))
			stream = storage.NewLogStream(logger)
		} else {
			stream = chStream
			logger.Info("clickhouse analytics stream connected")

			chReader, err = chread.NewReader(ctx, cfg.ClickHouseAddr,
				cfg.ClickHouseDatabase, cfg.ClickHouseUser, cfg.ClickHousePassword)
			if err != nil {
				logger.Warn("clickhouse reader connection failed", zap.Error(err))
				chReader = nil
			} else {
				logger.Info("clickhouse reader connected")
			}
		}
	} else {
		stream = storage.NewLogStream(logger)
		logger.Info("no CLICKHOUSE_ADDR set, using log stream")
	}

	// DB stats gauges
	statsCtx, stopStats := context.WithCancel(context.Background())
	defer stopStats()
	go metrics.StartDBStatsCollector(statsCtx, db, 15*time.Second)

	deps := &api.Dependencies{
		Store:        pgStore,
		Engine:       eng,
		Resolver:     resolver,
		Stream:       stream,
		Reader:       chReader,
		Logger:       logger,
		CacheTTL:     30 * time.Second,
		AuthDisabled: cfg.AuthDisabled,
	}
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Block until shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", zap.String("signal", sig.String()))

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}
	if err := stream.Close(shutdownCtx); err != nil {
		logger.Error("analytics stream shutdown error", zap.Error(err))
	}

	logger.Info("sentinel server stopped")
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}
