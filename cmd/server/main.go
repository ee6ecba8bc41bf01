package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/lock"
	"github.com/mamadbah2/stockledger/internal/repository/memory"
	"github.com/mamadbah2/stockledger/internal/repository/mongodb"
	"github.com/mamadbah2/stockledger/internal/repository/sheets"
	"github.com/mamadbah2/stockledger/internal/scheduler"
	"github.com/mamadbah2/stockledger/internal/server/handlers"
	"github.com/mamadbah2/stockledger/internal/server/router"
	inventorysvc "github.com/mamadbah2/stockledger/internal/service/inventory"
	"github.com/mamadbah2/stockledger/internal/service/movements"
	reportingsvc "github.com/mamadbah2/stockledger/internal/service/reporting"
	"github.com/mamadbah2/stockledger/pkg/clients/alerts"
	"github.com/mamadbah2/stockledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	policy, err := movements.ParsePolicy(cfg.Inventory.OutgoingPricePolicy)
	if err != nil {
		baseLogger.Fatal("invalid outgoing price policy", zap.Error(err))
	}
	applier := movements.NewApplier(policy)
	baseLogger.Info("outgoing price policy selected", zap.String("policy", string(policy)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		stockRepo     inventorysvc.Repository
		snapshotStore reportingsvc.SnapshotStore
	)
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		baseLogger.Warn("using in-memory storage, data is lost on restart")
		stockRepo = memory.NewStockRepository()
		snapshotStore = memory.NewSnapshotRepository()
	default:
		mongoClient, err := mongodb.Connect(ctx, cfg.MongoDB, logger.Named(baseLogger, "repo.mongodb"))
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := mongoClient.Close(closeCtx); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()

		mongoStocks := mongodb.NewStockRepository(mongoClient, logger.Named(baseLogger, "repo.stocks"))
		if err := mongoStocks.EnsureIndexes(ctx); err != nil {
			baseLogger.Fatal("failed to create mongodb indexes", zap.Error(err))
		}
		stockRepo = mongoStocks
		snapshotStore = mongodb.NewSnapshotRepository(mongoClient)
	}

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.Enabled() {
		redisClient, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			baseLogger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()

		locker = lock.NewRedisLocker(redisClient, cfg.Redis.LockTTL, logger.Named(baseLogger, "lock.redis"))
		baseLogger.Info("redis movement lock enabled", zap.String("addr", cfg.Redis.Addr))
	}

	inventorySvc := inventorysvc.NewService(stockRepo, applier, locker, cfg.Inventory.LowStockThreshold, logger.Named(baseLogger, "svc.inventory"))

	var exporter reportingsvc.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = sheets.NewValuationExporter(sheetsRepo)
		baseLogger.Info("google sheets valuation export enabled")
	}

	var alerter alerts.Client
	if cfg.Alerts.Enabled() {
		alerter = alerts.NewClient(cfg.Alerts)
		baseLogger.Info("low stock webhook alerts enabled")
	}

	reportingSvc := reportingsvc.NewService(inventorySvc, snapshotStore, exporter, alerter, logger.Named(baseLogger, "svc.reporting"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	stockHandler := handlers.NewStockHandler(inventorySvc, logger.Named(baseLogger, "handlers.stocks"))
	engine, err := router.New(stockHandler, logger.Named(baseLogger, "router"))
	if err != nil {
		baseLogger.Fatal("failed to init router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
