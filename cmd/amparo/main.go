package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/amparo-lar/amparo-lar/internal/app"
	"github.com/amparo-lar/amparo-lar/internal/categories"
	"github.com/amparo-lar/amparo-lar/internal/ledger"
	"github.com/amparo-lar/amparo-lar/internal/payables"
	"github.com/amparo-lar/amparo-lar/internal/receivables"
	"github.com/amparo-lar/amparo-lar/internal/reconciliation"
	"github.com/amparo-lar/amparo-lar/internal/reports"
	reporthttp "github.com/amparo-lar/amparo-lar/internal/reports/http"
	"github.com/amparo-lar/amparo-lar/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	categoryRepo := categories.NewRepository(dbpool)
	categoryService := categories.NewService(categoryRepo)
	categoryHandler := categories.NewHandler(logger, categoryService)

	ledgerRepo := ledger.NewRepository(dbpool)
	ledgerService := ledger.NewService(ledgerRepo)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	payableRepo := payables.NewRepository(dbpool)
	payableService := payables.NewService(payableRepo, categoryService)
	payableHandler := payables.NewHandler(logger, payableService)

	receivableRepo := receivables.NewRepository(dbpool)
	receivableService := receivables.NewService(receivableRepo, categoryService)
	receivableHandler := receivables.NewHandler(logger, receivableService)

	reconRepo := reconciliation.NewRepository(dbpool)
	reconService := reconciliation.NewService(reconRepo)
	reconHandler := reconciliation.NewHandler(logger, reconService)

	reportCache := reports.NewCache(redisClient, cfg.CacheTTL)
	if err := reportCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	reportService := reports.NewService(ledgerService, payableService, receivableService, reconService, reportCache)
	reportHandler := reporthttp.NewHandler(logger, reportService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:                logger,
		Config:                cfg,
		ReportInvalidator:     reportService,
		LedgerHandler:         ledgerHandler,
		CategoriesHandler:     categoryHandler,
		PayablesHandler:       payableHandler,
		ReceivablesHandler:    receivableHandler,
		ReconciliationHandler: reconHandler,
		ReportsHandler:        reportHandler,
		JobHandler:            jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
