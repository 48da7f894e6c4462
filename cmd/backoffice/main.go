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

	"github.com/faraway-yachting/backoffice/internal/app"
	"github.com/faraway-yachting/backoffice/internal/ledger/accounts"
	"github.com/faraway-yachting/backoffice/internal/ledger/journals"
	"github.com/faraway-yachting/backoffice/internal/ledger/periods"
	"github.com/faraway-yachting/backoffice/internal/ledger/posting"
	"github.com/faraway-yachting/backoffice/internal/observability"
	"github.com/faraway-yachting/backoffice/internal/platform/cache"
	"github.com/faraway-yachting/backoffice/internal/platform/db"
	"github.com/faraway-yachting/backoffice/internal/reports"
	"github.com/faraway-yachting/backoffice/internal/shared"
	"github.com/faraway-yachting/backoffice/jobs"
)

// ledgerHooks bridges journal lifecycle events to Prometheus counters
// and report cache invalidation.
type ledgerHooks struct {
	metrics *observability.Metrics
	reports *reports.Service
	logger  *slog.Logger
}

func (h ledgerHooks) EntryCreated(status journals.EntryStatus) {
	h.metrics.EntryCreated(string(status))
	h.invalidate()
}

func (h ledgerHooks) EntryPosted() {
	h.metrics.EntryPosted()
	h.invalidate()
}

func (h ledgerHooks) ReferenceRetried() {
	h.metrics.ReferenceRetried()
}

func (h ledgerHooks) invalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.reports.Invalidate(ctx); err != nil {
		h.logger.Warn("report cache invalidate", slog.Any("error", err))
	}
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)

	accountRepo := accounts.NewRepository(pool)
	accountService := accounts.NewService(accountRepo)
	accountsHandler := accounts.NewHandler(logger, accountService)

	periodGuard := periods.NewGuard(periods.NewRepository(pool))

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reports.NewService(reports.NewRepository(pool), reportCache)
	reportsHandler := reports.NewHandler(logger, reportService)

	journalRepo := journals.NewRepository(pool)
	journalService := journals.NewService(journalRepo, periodGuard, auditLogger)
	journalService.WithMetrics(ledgerHooks{metrics: metrics, reports: reportService, logger: logger})
	journalsHandler := journals.NewHandler(logger, journalService)

	postingService := posting.NewService(
		journalService,
		accountRepo,
		posting.NewPolicyRepository(pool),
		posting.NewBankDirectory(pool),
	)
	postingHandler := posting.NewHandler(logger, postingService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Pool:            pool,
		AccountsHandler: accountsHandler,
		JournalsHandler: journalsHandler,
		PostingHandler:  postingHandler,
		ReportsHandler:  reportsHandler,
		JobsHandler:     jobsHandler,
		Metrics:         metrics,
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
