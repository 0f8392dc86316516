package postgresengine

import (
	"github.com/ragalabs/loan-ledger-go/ledger"
)

// Option defines a functional option for configuring the LoanLedger.
type Option func(*LoanLedger) error

// WithTableName sets a custom table name for the loans table.
func WithTableName(tableName string) Option {
	return func(ll *LoanLedger) error {
		if tableName == "" {
			return ledger.ErrEmptyLoansTableName
		}

		ll.loansTableName = tableName

		return nil
	}
}

// WithLogger sets a logger for SQL query logging, operational messages and
// error reporting.
func WithLogger(logger ledger.Logger) Option {
	return func(ll *LoanLedger) error {
		ll.logger = logger

		return nil
	}
}

// WithContextualLogger sets a context-aware logger which correlates log
// entries with active trace spans. When both a plain and a contextual logger
// are configured the contextual one wins.
func WithContextualLogger(logger ledger.ContextualLogger) Option {
	return func(ll *LoanLedger) error {
		ll.contextualLogger = logger

		return nil
	}
}

// WithMetrics sets a metrics collector for operation durations, conflict
// counters and error counters.
func WithMetrics(collector ledger.MetricsCollector) Option {
	return func(ll *LoanLedger) error {
		ll.metricsCollector = collector

		return nil
	}
}

// WithTracing sets a tracing collector emitting one span per ledger
// operation.
func WithTracing(collector ledger.TracingCollector) Option {
	return func(ll *LoanLedger) error {
		ll.tracingCollector = collector

		return nil
	}
}
