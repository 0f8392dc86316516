package ledger

import (
	"errors"
)

// Invariant and workflow errors. These are the classified outcomes of the
// borrow/return state machine and must never be collapsed into an opaque
// internal error by callers.
var (
	// ErrOpenLoanExists signals a borrow attempt for a (book, patron) pair
	// that already has an open loan. It is a client-visible conflict.
	ErrOpenLoanExists = errors.New("the patron already has an open loan for this book")

	// ErrNoOpenLoanFound signals a return attempt for a pair with no open
	// loan. This is an expected, recoverable client error.
	ErrNoOpenLoanFound = errors.New("no open loan found for this book and patron")

	// ErrMultipleOpenLoans signals that more than one open loan was found for
	// a single pair. Under an intact invariant this cannot happen; it is the
	// ledger's self-check against storage corruption and must be alarmed,
	// never swallowed.
	ErrMultipleOpenLoans = errors.New("multiple open loans found for this book and patron")

	// ErrTransientStorageFailure classifies storage-level failures that are
	// safe to retry, such as serialization failures or deadlocks.
	ErrTransientStorageFailure = errors.New("transient storage failure")
)

// Engine configuration errors.
var (
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
	ErrEmptyLoansTableName   = errors.New("empty loans table name supplied")
)

// Storage-step errors, joined with the underlying cause via errors.Join.
var (
	ErrBuildingQueryFailed = errors.New("building query failed")
	ErrQueryingLoansFailed = errors.New("querying loan records failed")
	ErrScanningRowFailed   = errors.New("scanning database row failed")
	ErrBorrowFailed        = errors.New("persisting borrow failed")
	ErrReturnFailed        = errors.New("persisting return failed")
)
