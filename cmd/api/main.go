package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pkuhner/bartab/internal/api"
	"github.com/pkuhner/bartab/internal/config"
	"github.com/pkuhner/bartab/internal/events"
	"github.com/pkuhner/bartab/internal/events/kafka"
	"github.com/pkuhner/bartab/internal/infra/logging"
	"github.com/pkuhner/bartab/internal/infra/pgutils"
	pgaccounts "github.com/pkuhner/bartab/internal/repos/accounts/postgres"
	pgledger "github.com/pkuhner/bartab/internal/repos/ledger/postgres"
	"github.com/pkuhner/bartab/internal/services/history"
	"github.com/pkuhner/bartab/internal/services/transfer"
	"github.com/pkuhner/bartab/pkg/envconf"
	"github.com/pkuhner/bartab/pkg/shutdownqueue"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT"`
	KafkaBrokers    string        `env:"KAFKA_BROKERS,optional"`
	Postgres        config.PostgresConfig
}

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
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

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
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error {
		return db.Close()
	})

	var publisher events.Publisher = events.Nop{}

	if cfg.KafkaBrokers != "" {
		kp := kafka.NewPublisher(strings.Split(cfg.KafkaBrokers, ","))
		publisher = kp

		shutdownqueue.Add(func(context.Context) error {
			return kp.Close()
		})
	}

	// --- Services ---
	accountsRepo := pgaccounts.New(db)
	entriesRepo := pgledger.New(db)

	transferSrv := transfer.NewService(db, accountsRepo, entriesRepo, publisher)
	historySrv := history.New(accountsRepo, entriesRepo)

	// --- HTTP server ---
	handler := api.NewHandler(transferSrv, historySrv, accountsRepo)
	srv := api.NewServer(cfg.Port, api.NewRouter(handler))

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

	slog.Info("API started", "port", cfg.Port)

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
