package lending

import (
	"errors"
)

var (
	// ErrOpenLoansExist signals a catalog deletion attempt for a book or
	// patron that still has open loan records.
	ErrOpenLoansExist = errors.New("open loan records exist")

	// ErrNilLoanLedger is returned when a LendingService is constructed
	// without a loan ledger.
	ErrNilLoanLedger = errors.New("loan ledger must not be nil")

	// ErrNilCatalog is returned when a LendingService is constructed without
	// a catalog.
	ErrNilCatalog = errors.New("catalog must not be nil")
)

// Retry configuration errors.
var (
	ErrInvalidMaxAttempts  = errors.New("max attempts must be positive")
	ErrNegativeBaseDelay   = errors.New("base delay must not be negative")
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")
	ErrEmptyOperationName  = errors.New("operation name must not be empty")
)
