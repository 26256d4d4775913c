package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kf-pos/dashboard/internal/config"
	"github.com/kf-pos/dashboard/internal/mockbackend"
)

func main() {
	// CLI flags
	password := flag.String("password", "", "Password for every seeded account")
	simulate := flag.Duration("simulate", -1, "Inject a new order this often (0 disables)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := config.SetupLogger(cfg, os.Stdout)

	// Fall back to environment variables, then defaults
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *password == "" {
		*password = "password123"
		logger.Warn("using default password 'password123' for all demo accounts")
	}
	if *simulate < 0 {
		*simulate = cfg.MockSimulateEvery
	}

	if err := run(cfg, logger, *password, *simulate); err != nil {
		logger.Error("mock backend stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, password string, simulate time.Duration) error {
	store := mockbackend.NewStore()
	if err := mockbackend.Seed(store, password); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Info("seed completed",
		"accounts", []string{
			mockbackend.DemoSuperAdmin,
			mockbackend.DemoBMJakarta,
			mockbackend.DemoBMBandung,
			mockbackend.DemoAdminMenteng,
			mockbackend.DemoAdminDago,
		})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.MockPort),
		Handler:           mockbackend.NewServer(store, cfg.JWTSecret, cfg.MockTokenTTL, mockbackend.WithServerLogger(logger)).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	sim := mockbackend.NewSimulator(store, simulate, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting mock backend", "port", cfg.MockPort, "base_path", mockbackend.BasePath, "simulate", simulate)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sim.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
