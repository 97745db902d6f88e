package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/blockroyale-backend/internal/config"
	"github.com/DoyleJ11/blockroyale-backend/internal/httpapi"
	"github.com/DoyleJ11/blockroyale-backend/internal/hub"
	"github.com/DoyleJ11/blockroyale-backend/internal/logging"
	"github.com/DoyleJ11/blockroyale-backend/internal/results"
	"github.com/DoyleJ11/blockroyale-backend/internal/room"
	"github.com/DoyleJ11/blockroyale-backend/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		// stderr/stdout sync fails with EINVAL on some terminals
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openResults(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, store.Close()) }()

	var pending sync.WaitGroup
	gw := ws.NewGateway(log.Named("ws"))
	h := hub.NewHub(ctx, room.Options{
		Gateway:  gw,
		Logger:   log.Named("room"),
		Recorder: store,
		Pending:  &pending,
	})
	// rooms first, then in-flight result writes, then (deferred above) the store
	defer func() {
		h.Shutdown()
		pending.Wait()
	}()

	// Build the router *with* the hub injected
	handler := httpapi.SetupRoutes(httpapi.Deps{
		Hub:          h,
		Gateway:      gw,
		Results:      store,
		Logger:       log.Named("http"),
		ResultsLimit: cfg.ResultsLimit,
		WS: ws.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			WriteTimeout:   cfg.WriteTimeout,
			PingInterval:   cfg.PingInterval,
			PongTimeout:    cfg.PongTimeout,
			OutboxSize:     cfg.OutboxSize,
		},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

// openResults uses postgres when DATABASE_URL is set and keeps results in memory otherwise.
func openResults(ctx context.Context, cfg config.Config, log *zap.Logger) (results.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Info("no DATABASE_URL, keeping match results in memory")
		return results.NewMemoryStore(0), nil
	}
	store, err := results.OpenPostgres(ctx, cfg.DatabaseURL, log.Named("results"))
	if err != nil {
		return nil, fmt.Errorf("open results store: %w", err)
	}
	return store, nil
}
