package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/application"
	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	auctionhttp "github.com/cristianortiz/auctionlifecycle/internal/auction/infra/http"
	"github.com/cristianortiz/auctionlifecycle/internal/auction/infra/notify"
	auctionmemory "github.com/cristianortiz/auctionlifecycle/internal/auction/infra/repository/memory"
	auctionpostgres "github.com/cristianortiz/auctionlifecycle/internal/auction/infra/repository/postgres"
	auctionws "github.com/cristianortiz/auctionlifecycle/internal/auction/infra/websocket"
	"github.com/cristianortiz/auctionlifecycle/internal/auction/scheduler"
	productmemory "github.com/cristianortiz/auctionlifecycle/internal/product/infra/repository/memory"
	productpostgres "github.com/cristianortiz/auctionlifecycle/internal/product/infra/repository/postgres"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/config"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/db"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/db/migrations"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/httpserver"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/logger"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/websocket"
	usermemory "github.com/cristianortiz/auctionlifecycle/internal/user/infra/repository/memory"
	userpostgres "github.com/cristianortiz/auctionlifecycle/internal/user/infra/repository/postgres"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logger.GetLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}
	logger.Info("Starting auction lifecycle server...",
		zap.String("backend", cfg.StoreBackend),
		zap.String("addr", cfg.HTTPAddr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, closeStore, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Store setup failed", zap.Error(err))
	}
	defer closeStore()

	hub := websocket.NewHub()
	dispatcher := notify.NewDispatcher(cfg.EventBuffer,
		notify.NewLogSink(logger),
		auctionws.NewHubSink(hub),
	)
	deps.Emitter = dispatcher
	deps.Clock = domain.SystemClock{}

	service := application.NewService(deps, application.Config{StartGrace: cfg.StartGrace})
	sched := scheduler.New(service, deps.Clock, scheduler.Config{
		Interval:           cfg.SweepInterval,
		EndingSoonInterval: cfg.EndingSoonInterval,
		Lookahead:          cfg.EndingSoonLookahead,
		ItemTimeout:        cfg.SweepItemTimeout,
		Concurrency:        cfg.SweepConcurrency,
	})

	server := httpserver.NewServer()
	auctionhttp.NewAuctionHandler(service, sched).RegisterRoutes(server.App())
	wsHandler := auctionws.NewAuctionWSHandler(service, hub)
	wsHandler.RegisterRoutes(ctx, server.App())

	// the dispatcher outlives ctx so events committed during shutdown are still delivered
	go dispatcher.Run(context.WithoutCancel(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { hub.Run(gctx); return nil })
	g.Go(func() error { wsHandler.ListenForMessages(gctx); return nil })
	g.Go(func() error { sched.Run(gctx); return nil })
	g.Go(func() error { return server.Start(cfg.HTTPAddr) })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server stopped with error", zap.Error(err))
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := dispatcher.Close(drainCtx); err != nil {
		logger.Warn("Event dispatcher did not drain", zap.Error(err), zap.Int64("dropped", dispatcher.Dropped()))
	}
	logger.Info("Auction lifecycle server stopped")
}

// buildStores wires the repositories of the configured backend. The returned func releases them.
func buildStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (application.Dependencies, func(), error) {
	if cfg.StoreBackend == config.BackendMemory {
		logger.Warn("Using in-memory stores, state is lost on restart")
		store := auctionmemory.NewStore()
		return application.Dependencies{
			Auctions: store,
			Ledger:   store,
			Products: productmemory.NewProductRepository(),
			Users:    usermemory.NewUserRepository(),
		}, func() {}, nil
	}

	if cfg.RunMigrations {
		logger.Info("Running database migrations...")
		if err := migrations.RunMigrations(cfg.DB.DSN()); err != nil {
			return application.Dependencies{}, nil, err
		}
		logger.Info("Database migrations completed successfully.")
	}

	pool, err := db.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		return application.Dependencies{}, nil, err
	}
	store := auctionpostgres.NewStore(pool)
	return application.Dependencies{
		Auctions: store,
		Ledger:   store,
		Products: productpostgres.NewProductRepository(pool),
		Users:    userpostgres.NewUserRepository(pool),
	}, pool.Close, nil
}
