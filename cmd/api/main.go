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

	"github.com/fastprodman/dragonhoard/internal/api"
	"github.com/fastprodman/dragonhoard/internal/gateway"
	"github.com/fastprodman/dragonhoard/internal/infra/logging"
	"github.com/fastprodman/dragonhoard/internal/infra/pgutils"
	"github.com/fastprodman/dragonhoard/internal/services/ledger"
	"github.com/fastprodman/dragonhoard/internal/services/rankgate"
	"github.com/fastprodman/dragonhoard/internal/services/roster"
	"github.com/fastprodman/dragonhoard/pkg/envconf"
	"github.com/fastprodman/dragonhoard/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	dbConns, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error {
		slog.Info("Close database pool")

		return dbConns.Close()
	})

	// --- Services ---
	stripeGateway := gateway.NewStripe(cfg.Stripe, cfg.PublicURL)

	deps := api.Deps{
		Ledger:   ledger.New(dbConns),
		Roster:   roster.New(dbConns),
		RankGate: rankgate.New(dbConns),
		Gateway:  stripeGateway,
	}

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, deps)

	// Register HTTP server graceful shutdown
	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	if stripeGateway.Configured() {
		slog.Info("API started", "gateway", "stripe")
	} else {
		slog.Warn("API started without a payment gateway; dev credit path enabled")
	}

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
