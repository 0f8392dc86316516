package lending

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ragalabs/loan-ledger-go/catalog"
	"github.com/ragalabs/loan-ledger-go/ledger"
)

// Clock supplies the current time for borrow and return records. It exists
// so tests can run the workflow against a fixed time.
type Clock func() time.Time

// LendingService is the application-facing entry point of the lending
// workflow. It resolves catalog references, delegates the invariant-bearing
// writes to the loan ledger, and guards catalog deletions.
type LendingService struct {
	loanLedger   LoanLedger
	catalog      Catalog
	guard        *DeletionGuard
	clock        Clock
	logger       ledger.Logger
	retryOptions []RetryOption
}

// ServiceOption defines a functional option for configuring the
// LendingService.
type ServiceOption func(*LendingService)

// WithClock sets the clock used to timestamp borrow and return records.
func WithClock(clock Clock) ServiceOption {
	return func(s *LendingService) {
		s.clock = clock
	}
}

// WithLogger sets a logger for workflow-level messages.
func WithLogger(logger ledger.Logger) ServiceOption {
	return func(s *LendingService) {
		s.logger = logger
	}
}

// WithRetryOptions sets the retry configuration applied to borrow and
// return calls.
func WithRetryOptions(options ...RetryOption) ServiceOption {
	return func(s *LendingService) {
		s.retryOptions = options
	}
}

// NewLendingService creates a LendingService on the given ledger and
// catalog.
func NewLendingService(loanLedger LoanLedger, cat Catalog, options ...ServiceOption) (*LendingService, error) {
	if loanLedger == nil {
		return nil, ErrNilLoanLedger
	}

	if cat == nil {
		return nil, ErrNilCatalog
	}

	guard, err := NewDeletionGuard(loanLedger)
	if err != nil {
		return nil, err
	}

	s := &LendingService{
		loanLedger: loanLedger,
		catalog:    cat,
		guard:      guard,
		clock:      func() time.Time { return time.Now().UTC() },
	}

	for _, option := range options {
		option(s)
	}

	return s, nil
}

/***** lending workflow *****/

// BorrowBook records that the given patron borrows the given book.
//
// Both references are resolved first, so a dangling id surfaces as
// catalog.ErrBookNotFound or catalog.ErrPatronNotFound naming the id that
// failed. A pair that already has an open loan surfaces as
// ledger.ErrOpenLoanExists. Transient storage failures are retried with
// exponential backoff.
func (s *LendingService) BorrowBook(ctx context.Context, bookID uuid.UUID, patronID uuid.UUID) (ledger.LoanRecord, error) {
	var empty ledger.LoanRecord

	book, err := s.catalog.BookByID(ctx, bookID)
	if err != nil {
		return empty, err
	}

	patron, err := s.catalog.PatronByID(ctx, patronID)
	if err != nil {
		return empty, err
	}

	var record ledger.LoanRecord

	retryErr := RetryWithExponentialBackoff(ctx, func(ctx context.Context) error {
		var borrowErr error
		record, borrowErr = s.loanLedger.Borrow(ctx, book.ID, patron.ID, s.clock())

		return borrowErr
	}, s.retryOptions...)

	if retryErr != nil {
		return empty, retryErr
	}

	s.logInfo("book borrowed",
		"loan_id", record.ID.String(),
		"book_id", book.ID.String(),
		"patron_id", patron.ID.String())

	return record, nil
}

// ReturnBook records that the given patron returns the given book, closing
// the open loan record for the pair.
//
// A pair without an open loan surfaces as ledger.ErrNoOpenLoanFound.
// Transient storage failures are retried with exponential backoff.
func (s *LendingService) ReturnBook(ctx context.Context, bookID uuid.UUID, patronID uuid.UUID) (ledger.LoanRecord, error) {
	var empty ledger.LoanRecord

	book, err := s.catalog.BookByID(ctx, bookID)
	if err != nil {
		return empty, err
	}

	patron, err := s.catalog.PatronByID(ctx, patronID)
	if err != nil {
		return empty, err
	}

	var record ledger.LoanRecord

	retryErr := RetryWithExponentialBackoff(ctx, func(ctx context.Context) error {
		var returnErr error
		record, returnErr = s.loanLedger.Return(ctx, book.ID, patron.ID, s.clock())

		return returnErr
	}, s.retryOptions...)

	if retryErr != nil {
		return empty, retryErr
	}

	s.logInfo("book returned",
		"loan_id", record.ID.String(),
		"book_id", book.ID.String(),
		"patron_id", patron.ID.String())

	return record, nil
}

// LoanRecords retrieves the loan records matching the given filter.
func (s *LendingService) LoanRecords(ctx context.Context, filter ledger.LoanFilter) (ledger.LoanRecords, error) {
	return s.loanLedger.Loans(ctx, filter)
}

/***** book management *****/

// AddBook validates the given attributes and adds a new book to the catalog.
func (s *LendingService) AddBook(ctx context.Context, title string, author string, publicationYear int, isbn string) (catalog.Book, error) {
	book, err := catalog.BuildBook(title, author, publicationYear, isbn)
	if err != nil {
		return catalog.Book{}, err
	}

	if err := s.catalog.AddBook(ctx, book); err != nil {
		return catalog.Book{}, err
	}

	return book, nil
}

// Book retrieves a single book from the catalog.
func (s *LendingService) Book(ctx context.Context, bookID uuid.UUID) (catalog.Book, error) {
	return s.catalog.BookByID(ctx, bookID)
}

// Books retrieves all books from the catalog.
func (s *LendingService) Books(ctx context.Context) (catalog.Books, error) {
	return s.catalog.AllBooks(ctx)
}

// UpdateBook validates the given attributes and updates an existing book.
func (s *LendingService) UpdateBook(ctx context.Context, bookID uuid.UUID, title string, author string, publicationYear int, isbn string) (catalog.Book, error) {
	book, err := s.catalog.BookByID(ctx, bookID)
	if err != nil {
		return catalog.Book{}, err
	}

	updated, err := book.Update(title, author, publicationYear, isbn)
	if err != nil {
		return catalog.Book{}, err
	}

	if err := s.catalog.UpdateBook(ctx, updated); err != nil {
		return catalog.Book{}, err
	}

	return updated, nil
}

// RemoveBook deletes a book from the catalog unless open loan records still
// reference it, in which case ErrOpenLoansExist is returned and nothing is
// deleted.
func (s *LendingService) RemoveBook(ctx context.Context, bookID uuid.UUID) error {
	if _, err := s.catalog.BookByID(ctx, bookID); err != nil {
		return err
	}

	if err := s.guard.EnsureBookDeletable(ctx, bookID); err != nil {
		return err
	}

	if err := s.catalog.RemoveBook(ctx, bookID); err != nil {
		return err
	}

	s.logInfo("book removed", "book_id", bookID.String())

	return nil
}

/***** patron management *****/

// AddPatron validates the given attributes and adds a new patron to the
// catalog.
func (s *LendingService) AddPatron(ctx context.Context, name string, contactInformation string) (catalog.Patron, error) {
	patron, err := catalog.BuildPatron(name, contactInformation)
	if err != nil {
		return catalog.Patron{}, err
	}

	if err := s.catalog.AddPatron(ctx, patron); err != nil {
		return catalog.Patron{}, err
	}

	return patron, nil
}

// Patron retrieves a single patron from the catalog.
func (s *LendingService) Patron(ctx context.Context, patronID uuid.UUID) (catalog.Patron, error) {
	return s.catalog.PatronByID(ctx, patronID)
}

// Patrons retrieves all patrons from the catalog.
func (s *LendingService) Patrons(ctx context.Context) (catalog.Patrons, error) {
	return s.catalog.AllPatrons(ctx)
}

// UpdatePatron validates the given attributes and updates an existing
// patron.
func (s *LendingService) UpdatePatron(ctx context.Context, patronID uuid.UUID, name string, contactInformation string) (catalog.Patron, error) {
	patron, err := s.catalog.PatronByID(ctx, patronID)
	if err != nil {
		return catalog.Patron{}, err
	}

	updated, err := patron.Update(name, contactInformation)
	if err != nil {
		return catalog.Patron{}, err
	}

	if err := s.catalog.UpdatePatron(ctx, updated); err != nil {
		return catalog.Patron{}, err
	}

	return updated, nil
}

// RemovePatron deletes a patron from the catalog unless open loan records
// still reference them, in which case ErrOpenLoansExist is returned and
// nothing is deleted.
func (s *LendingService) RemovePatron(ctx context.Context, patronID uuid.UUID) error {
	if _, err := s.catalog.PatronByID(ctx, patronID); err != nil {
		return err
	}

	if err := s.guard.EnsurePatronDeletable(ctx, patronID); err != nil {
		return err
	}

	if err := s.catalog.RemovePatron(ctx, patronID); err != nil {
		return err
	}

	s.logInfo("patron removed", "patron_id", patronID.String())

	return nil
}

func (s *LendingService) logInfo(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
