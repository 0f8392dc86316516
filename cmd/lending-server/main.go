// Command lending-server runs the HTTP API of the lending system on top of
// Postgres. The database adapter is selected with ADAPTER_TYPE (pgx, sqldb
// or sqlx); OpenTelemetry export is switched on with OTEL_ENABLED=true.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"

	"github.com/ragalabs/loan-ledger-go/config"
	"github.com/ragalabs/loan-ledger-go/httpapi"
	"github.com/ragalabs/loan-ledger-go/lending"

	catalogengine "github.com/ragalabs/loan-ledger-go/catalog/postgresengine"
	"github.com/ragalabs/loan-ledger-go/ledger/oteladapters"
	ledgerengine "github.com/ragalabs/loan-ledger-go/ledger/postgresengine"
)

const serviceVersion = "0.3.0"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("server exited with error", "error", err.Error())
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverCfg := config.NewServerConfig()

	var observabilityOptions []ledgerengine.Option

	if config.ObservabilityEnabled() {
		providers, err := config.NewObservabilityProviders(ctx, serviceVersion)
		if err != nil {
			return err
		}
		defer func() {
			if shutdownErr := providers.Shutdown(); shutdownErr != nil {
				logger.Warn("observability shutdown failed", "error", shutdownErr.Error())
			}
		}()

		observabilityOptions = []ledgerengine.Option{
			ledgerengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("loanledger")),
			ledgerengine.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter("loanledger"))),
			ledgerengine.WithTracing(oteladapters.NewTracingCollector(otel.Tracer("loanledger"))),
		}
	}

	loanLedger, cat, err := buildEngines(ctx, logger, observabilityOptions)
	if err != nil {
		return err
	}

	service, err := lending.NewLendingService(loanLedger, cat, lending.WithLogger(logger))
	if err != nil {
		return err
	}

	handler := httpapi.NewHandler(service, httpapi.WithLogger(logger))

	server := &http.Server{
		Addr:         serverCfg.ListenAddr,
		Handler:      handler.Router(),
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
		IdleTimeout:  serverCfg.IdleTimeout,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("listening", "addr", serverCfg.ListenAddr, "adapter", string(config.SelectedAdapterType()))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// buildEngines opens the database connection for the selected adapter and
// constructs the ledger and catalog engines on it.
func buildEngines(
	ctx context.Context,
	logger *slog.Logger,
	observabilityOptions []ledgerengine.Option,
) (lending.LoanLedger, lending.Catalog, error) {

	dsn := config.PostgresDSN()
	ledgerOptions := append([]ledgerengine.Option{ledgerengine.WithLogger(logger)}, observabilityOptions...)

	switch config.SelectedAdapterType() {
	case config.AdapterSQLDB:
		db, err := config.OpenSQLDB(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}

		loanLedger, err := ledgerengine.NewLoanLedgerFromSQLDB(db, ledgerOptions...)
		if err != nil {
			return nil, nil, err
		}

		cat, err := catalogengine.NewCatalogFromSQLDB(db, catalogengine.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}

		return loanLedger, cat, nil

	case config.AdapterSQLX:
		db, err := config.OpenSQLX(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}

		loanLedger, err := ledgerengine.NewLoanLedgerFromSQLX(db, ledgerOptions...)
		if err != nil {
			return nil, nil, err
		}

		cat, err := catalogengine.NewCatalogFromSQLX(db, catalogengine.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}

		return loanLedger, cat, nil

	default:
		pool, err := config.OpenPGXPool(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}

		var loanLedger *ledgerengine.LoanLedger

		if replicaDSN := config.PostgresReplicaDSN(); replicaDSN != "" {
			replica, replicaErr := config.OpenPGXPool(ctx, replicaDSN)
			if replicaErr != nil {
				return nil, nil, replicaErr
			}

			loanLedger, err = ledgerengine.NewLoanLedgerFromPGXPoolWithReplica(pool, replica, ledgerOptions...)
		} else {
			loanLedger, err = ledgerengine.NewLoanLedgerFromPGXPool(pool, ledgerOptions...)
		}

		if err != nil {
			return nil, nil, err
		}

		cat, err := catalogengine.NewCatalogFromPGXPool(pool, catalogengine.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}

		return loanLedger, cat, nil
	}
}
