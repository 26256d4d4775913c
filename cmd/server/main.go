package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kf-pos/dashboard/internal/backend"
	"github.com/kf-pos/dashboard/internal/config"
	"github.com/kf-pos/dashboard/internal/metrics"
	"github.com/kf-pos/dashboard/internal/router"
	"github.com/kf-pos/dashboard/internal/service"
	"github.com/kf-pos/dashboard/internal/session"
	"github.com/kf-pos/dashboard/internal/ws"
)

func main() {
	if err := run(); err != nil {
		slog.Error("dashboard stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.SetupLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := openKV(cfg.SessionDir)
	if err != nil {
		return err
	}
	defer kv.Close()

	reg := metrics.NewRegistry()

	// The board and dispatcher are created after the store; the hook only
	// fires on requests, by which time both are set.
	var (
		board      *service.Board
		dispatcher *service.Dispatcher
	)
	store := session.NewStore(kv,
		session.WithLogger(logger),
		session.WithInvalidHook(func(reason string) {
			reg.SessionInvalidated(reason)
			if dispatcher != nil {
				dispatcher.Cancel()
			}
			if board != nil {
				board.Unmount()
			}
		}),
	)

	client := backend.NewClient(cfg.BackendURL, &http.Client{Timeout: cfg.HTTPTimeout}, store)
	sessions := session.NewManager(store, client)

	board = service.NewBoard(client,
		service.WithPollInterval(cfg.PollInterval),
		service.WithObserver(reg),
		service.WithBoardLogger(logger),
		service.WithBaseContext(ctx),
	)
	dispatcher = service.NewDispatcher(client, board,
		service.WithDispatcherObserver(reg),
		service.WithDispatcherLogger(logger),
	)

	hub := ws.NewHub(
		ws.WithClientGauge(func(n int) { reg.WSClients.Set(float64(n)) }),
		ws.WithLogger(logger),
	)
	board.OnChange(hub.Publish)

	r := router.New(cfg, router.Deps{
		Sessions:   sessions,
		Validator:  store,
		Board:      board,
		Dispatcher: dispatcher,
		Catalog:    client,
		Hub:        hub,
		Metrics:    reg.Handler(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting dashboard", "port", cfg.Port, "backend", cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		board.Unmount()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	board.Wait()
	logger.Info("dashboard shutdown complete")
	return nil
}

// openKV uses Pebble when a session directory is configured, so a login
// survives restarts; otherwise the session lives in memory.
func openKV(dir string) (session.KV, error) {
	if dir == "" {
		return session.NewMemoryKV(), nil
	}
	kv, err := session.NewPebbleKV(dir)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return kv, nil
}
