package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/havenwood-client/api/routes"
	"github.com/angelmondragon/havenwood-client/internal/cart"
	"github.com/angelmondragon/havenwood-client/internal/commerce"
	"github.com/angelmondragon/havenwood-client/internal/persist"
	"github.com/angelmondragon/havenwood-client/internal/syncer"
	"github.com/angelmondragon/havenwood-client/internal/wishlist"
	"github.com/angelmondragon/havenwood-client/pkg/auth"
	"github.com/angelmondragon/havenwood-client/pkg/config"
	"github.com/angelmondragon/havenwood-client/pkg/db"
	"github.com/angelmondragon/havenwood-client/pkg/logger"
	"github.com/angelmondragon/havenwood-client/pkg/metrics"
	"github.com/angelmondragon/havenwood-client/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cartd"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cartd",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobs, storePinger, cleanup, err := newBlobs(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap blob store", err)
		os.Exit(1)
	}
	defer cleanup()

	registry := prometheus.NewRegistry()
	syncMetrics := metrics.NewSyncMetrics(registry)

	store, err := persist.NewStore(persist.StoreParams{
		Blobs:   blobs,
		Config:  cfg.Persist,
		Logger:  logg,
		Metrics: syncMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create persistence store", err)
		os.Exit(1)
	}

	session, err := auth.NewSession(store, cfg.Session)
	if err != nil {
		logg.Error(ctx, "failed to create session", err)
		os.Exit(1)
	}

	remote, err := commerce.NewClient(cfg.Commerce, session)
	if err != nil {
		logg.Error(ctx, "failed to create commerce client", err)
		os.Exit(1)
	}

	queue := syncer.NewQueue(syncer.Params{
		Logger:     logg,
		Metrics:    syncMetrics,
		JobTimeout: cfg.Commerce.PushTimeout,
	})
	go queue.Run(ctx)

	cartEngine, err := cart.NewEngine(cart.Params{
		Store:   store,
		Remote:  remote,
		Queue:   queue,
		Session: session,
		Pricing: cart.Pricing{
			TaxRate:               cfg.Cart.TaxRate(),
			FreeShippingThreshold: cfg.Cart.FreeShippingThreshold(),
			FlatShippingFee:       cfg.Cart.FlatShippingFee(),
		},
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart engine", err)
		os.Exit(1)
	}

	wishlistEngine, err := wishlist.NewEngine(wishlist.Params{
		Store:   store,
		Remote:  remote,
		Queue:   queue,
		Session: session,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create wishlist engine", err)
		os.Exit(1)
	}

	cartEngine.AttachWishlist(wishlistEngine)
	wishlistEngine.AttachCart(cartEngine)

	cartEngine.Load(ctx, false)
	wishlistEngine.Load(ctx, false)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": cfg.Persist.NormalizedDriver(),
	})
	logg.Info(startCtx, "starting cart engine")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:   cfg,
			Logger:   logg,
			Cart:     cartEngine,
			Wishlist: wishlistEngine,
			Session:  session,
			Store:    storePinger,
			Registry: registry,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(startCtx, "server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "server shutdown failed", err)
	}

	// Pending state must land before exit: debounced writes first,
	// then the final remote mirror.
	store.Flush()
	queue.Drain(shutdownCtx)

	logg.Info(startCtx, "cart engine shut down gracefully")
}

type readyProbe interface {
	Ping(ctx context.Context) error
}

// newBlobs builds the configured blob backend. The cleanup func closes
// whatever the driver opened.
func newBlobs(ctx context.Context, cfg *config.Config, logg *logger.Logger) (persist.Blobs, readyProbe, func(), error) {
	switch cfg.Persist.NormalizedDriver() {
	case config.DriverRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		blobs, err := persist.NewRedisBlobs(client)
		if err != nil {
			client.Close()
			return nil, nil, nil, err
		}
		return blobs, client, func() { client.Close() }, nil

	case config.DriverMemory:
		return persist.NewMemoryBlobs(), nil, func() {}, nil

	default:
		client, err := db.New(ctx, cfg.Persist, logg)
		if err != nil {
			return nil, nil, nil, err
		}
		blobs, err := persist.NewSQLiteBlobs(client)
		if err != nil {
			client.Close()
			return nil, nil, nil, err
		}
		return blobs, client, func() { client.Close() }, nil
	}
}
