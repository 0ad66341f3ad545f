// Package main implements the showroom HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WessleyAI/showroom/engine/carquery"
	"github.com/WessleyAI/showroom/engine/domain"
	"github.com/WessleyAI/showroom/engine/favorites"
	"github.com/WessleyAI/showroom/engine/inventory"
	"github.com/WessleyAI/showroom/engine/pricing"
	"github.com/WessleyAI/showroom/engine/schedule"
	"github.com/WessleyAI/showroom/engine/storage"
	"github.com/WessleyAI/showroom/engine/web"
	"github.com/WessleyAI/showroom/pkg/config"
	"github.com/WessleyAI/showroom/pkg/fn"
	"github.com/WessleyAI/showroom/pkg/metrics"
	"github.com/WessleyAI/showroom/pkg/mid"
	"github.com/WessleyAI/showroom/pkg/natsutil"
	"github.com/WessleyAI/showroom/pkg/resilience"
	"github.com/nats-io/nats.go"
)

func main() {
	cfg, err := config.Load()
	logger := newLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

// newLogger builds the JSON logger. Unknown levels fall back to info.
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

type app struct {
	server  *web.Server
	metrics *metrics.Showroom
	logger  *slog.Logger
	closers []func(context.Context) error
}

// wire connects storage and NATS and builds every service.
func wire(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{logger: logger, metrics: metrics.NewShowroom(metrics.New())}

	st, closeStore, err := storage.Open(ctx, storage.Options{
		Backend:    cfg.Storage,
		SQLitePath: cfg.SQLitePath,
		Neo4jURL:   cfg.Neo4jURL,
		Neo4jUser:  cfg.Neo4jUser,
		Neo4jPass:  cfg.Neo4jPass,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.closers = append(a.closers, closeStore)
	logger.Info("storage ready", "backend", cfg.Storage)

	var events natsutil.Publisher
	if cfg.NATSURL != "" {
		var nc *nats.Conn
		err := fn.RetryErr(ctx, fn.ConnectRetry, func(context.Context) error {
			var err error
			nc, err = nats.Connect(cfg.NATSURL, nats.Name("showroom"))
			return err
		})
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("nats connect: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return nc.Drain() })
		events = nc
		logger.Info("publishing bookings", "subject", schedule.Subject)
	}

	years := domain.YearRange{Min: cfg.MinYear, Max: cfg.MaxYear}
	lookup := carquery.New(carquery.Options{
		BaseURL: cfg.CarQueryURL,
		Timeout: cfg.Timeout,
		RPS:     cfg.LookupRPS,
		Logger:  logger,
		Metrics: a.metrics,
	})
	prices := pricing.New(pricing.Options{
		BaseURL: cfg.CarAPIURL,
		Token:   cfg.CarAPIToken,
		Relay:   cfg.CarAPIRelay,
		Timeout: cfg.Timeout,
		Breaker: resilience.NewBreaker(resilience.BreakerOpts{Name: "carapi", Logger: logger}),
		Logger:  logger,
		Metrics: a.metrics,
	})
	favs := favorites.New(st, logger)

	a.server = web.New(web.Deps{
		Lookup:    lookup,
		Years:     years,
		Favorites: favs,
		Inventory: inventory.New(lookup, favs),
		Prices:    pricing.NewLoader(prices, cfg.PriceWorkers),
		Schedule:  schedule.New(lookup, years, st, events, logger, a.metrics),
		Metrics:   a.metrics,
		Logger:    logger,
	})
	return a, nil
}

func (a *app) handler(cfg config.Config) http.Handler {
	mux := http.NewServeMux()
	a.server.Register(mux)
	mux.Handle("GET /metrics", a.metrics.Registry().Handler())

	return mid.Chain(mux,
		mid.Recover(a.logger),
		mid.Visitor(false),
		mid.Logger(a.logger, a.metrics.ObserveRequest),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("showroom"),
	)
}

// close releases connections in reverse order of acquisition.
func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	return errors.Join(errs...)
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := wire(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.handler(cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("showroom starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			a.close(context.Background())
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return errors.Join(srv.Shutdown(shutCtx), a.close(shutCtx))
}
