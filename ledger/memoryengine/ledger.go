package memoryengine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ragalabs/loan-ledger-go/ledger"
)

type pairKey struct {
	bookID   uuid.UUID
	patronID uuid.UUID
}

// LoanLedger is the in-memory implementation of the lending ledger.
type LoanLedger struct {
	mu      sync.RWMutex
	records ledger.LoanRecords

	pairMu    sync.Mutex
	pairLocks map[pairKey]*sync.Mutex

	logger ledger.Logger
}

// Option defines a functional option for configuring the LoanLedger.
type Option func(*LoanLedger)

// WithLogger sets a logger for warnings and corruption alarms.
func WithLogger(logger ledger.Logger) Option {
	return func(ll *LoanLedger) {
		ll.logger = logger
	}
}

// NewLoanLedger creates an empty in-memory LoanLedger.
func NewLoanLedger(options ...Option) *LoanLedger {
	ll := &LoanLedger{
		records:   make(ledger.LoanRecords, 0),
		pairLocks: make(map[pairKey]*sync.Mutex),
	}

	for _, option := range options {
		option(ll)
	}

	return ll
}

// Borrow creates a new open loan record for the given pair. The invariant
// check and the append are serialized per pair, so concurrent borrows for
// the same pair see exactly one winner.
func (ll *LoanLedger) Borrow(
	ctx context.Context,
	bookID uuid.UUID,
	patronID uuid.UUID,
	borrowedAt time.Time,
) (ledger.LoanRecord, error) {

	var empty ledger.LoanRecord

	if err := ctx.Err(); err != nil {
		return empty, err
	}

	record, buildErr := ledger.BuildLoanRecord(bookID, patronID, borrowedAt)
	if buildErr != nil {
		return empty, buildErr
	}

	pl := ll.pairLock(bookID, patronID)
	pl.Lock()
	defer pl.Unlock()

	if len(ll.openLoansFor(bookID, patronID)) > 0 {
		if ll.logger != nil {
			ll.logger.Warn("open loan already exists for pair",
				"book_id", bookID.String(), "patron_id", patronID.String())
		}

		return empty, ledger.ErrOpenLoanExists
	}

	ll.mu.Lock()
	ll.records = append(ll.records, record)
	ll.mu.Unlock()

	return record, nil
}

// Return closes the open loan record for the given pair. When more than one
// open record exists the storage is corrupt: the condition is alarmed via the
// logger and ledger.ErrMultipleOpenLoans is returned with no record modified,
// leaving the corrupted state intact for inspection.
func (ll *LoanLedger) Return(
	ctx context.Context,
	bookID uuid.UUID,
	patronID uuid.UUID,
	returnedAt time.Time,
) (ledger.LoanRecord, error) {

	var empty ledger.LoanRecord

	if err := ctx.Err(); err != nil {
		return empty, err
	}

	pl := ll.pairLock(bookID, patronID)
	pl.Lock()
	defer pl.Unlock()

	ll.mu.Lock()
	defer ll.mu.Unlock()

	openIndexes := make([]int, 0, 1)

	for idx, record := range ll.records {
		if record.BookID == bookID && record.PatronID == patronID && record.IsOpen() {
			openIndexes = append(openIndexes, idx)
		}
	}

	switch len(openIndexes) {
	case 0:
		return empty, ledger.ErrNoOpenLoanFound

	case 1:
		closed := ll.records[openIndexes[0]].Close(returnedAt)
		ll.records[openIndexes[0]] = closed

		return closed, nil

	default:
		if ll.logger != nil {
			ll.logger.Error("multiple open loans found for pair, storage consistency is broken",
				"book_id", bookID.String(),
				"patron_id", patronID.String(),
				"open_count", len(openIndexes))
		}

		return empty, ledger.ErrMultipleOpenLoans
	}
}

// Loans retrieves copies of the loan records matching the given filter,
// ordered by borrow time.
func (ll *LoanLedger) Loans(ctx context.Context, filter ledger.LoanFilter) (ledger.LoanRecords, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ll.mu.RLock()
	defer ll.mu.RUnlock()

	matching := make(ledger.LoanRecords, 0)

	for _, record := range ll.records {
		if filter.Matches(record) {
			matching = append(matching, record)
		}
	}

	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].BorrowedAt.Before(matching[j].BorrowedAt)
	})

	return matching, nil
}

// CountOpenLoans counts the open loan records matching the given filter.
func (ll *LoanLedger) CountOpenLoans(ctx context.Context, filter ledger.LoanFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ll.mu.RLock()
	defer ll.mu.RUnlock()

	count := 0

	for _, record := range ll.records {
		if record.IsOpen() && filter.Matches(record) {
			count++
		}
	}

	return count, nil
}

func (ll *LoanLedger) openLoansFor(bookID uuid.UUID, patronID uuid.UUID) ledger.LoanRecords {
	ll.mu.RLock()
	defer ll.mu.RUnlock()

	open := make(ledger.LoanRecords, 0, 1)

	for _, record := range ll.records {
		if record.BookID == bookID && record.PatronID == patronID && record.IsOpen() {
			open = append(open, record)
		}
	}

	return open
}

// pairLock returns the mutex serializing borrow/return calls for one pair,
// creating it on first use. Locks are never removed; the map grows with the
// number of distinct pairs, which is bounded by catalog size.
func (ll *LoanLedger) pairLock(bookID uuid.UUID, patronID uuid.UUID) *sync.Mutex {
	key := pairKey{bookID: bookID, patronID: patronID}

	ll.pairMu.Lock()
	defer ll.pairMu.Unlock()

	lock, ok := ll.pairLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		ll.pairLocks[key] = lock
	}

	return lock
}
