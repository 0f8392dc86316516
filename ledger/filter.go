package ledger

import (
	"time"

	"github.com/google/uuid"
)

/***** LoanFilter *****/

// LoanFilter is a generic, storage-agnostic description of which loan records
// to select. Engines translate it into their specific query language, e.g.
// SQL for the Postgres engine or a plain scan for the in-memory engine.
type LoanFilter struct {
	bookID        uuid.UUID
	hasBookID     bool
	patronID      uuid.UUID
	hasPatronID   bool
	onlyOpen      bool
	borrowedFrom  time.Time
	borrowedUntil time.Time
}

// BookID returns the book scope of the filter and whether one was set.
func (f LoanFilter) BookID() (uuid.UUID, bool) {
	return f.bookID, f.hasBookID
}

// PatronID returns the patron scope of the filter and whether one was set.
func (f LoanFilter) PatronID() (uuid.UUID, bool) {
	return f.patronID, f.hasPatronID
}

// OnlyOpenLoans reports whether the filter selects open records only.
func (f LoanFilter) OnlyOpenLoans() bool {
	return f.onlyOpen
}

// BorrowedFrom returns the lower bound on the borrow time, zero if unbounded.
func (f LoanFilter) BorrowedFrom() time.Time {
	return f.borrowedFrom
}

// BorrowedUntil returns the upper bound on the borrow time, zero if unbounded.
func (f LoanFilter) BorrowedUntil() time.Time {
	return f.borrowedUntil
}

// Matches reports whether the given record satisfies the filter.
// It is the reference semantics for all engines; the in-memory engine uses it
// directly, and the Postgres engine's generated WHERE clause must agree with it.
func (f LoanFilter) Matches(record LoanRecord) bool {
	if f.hasBookID && record.BookID != f.bookID {
		return false
	}

	if f.hasPatronID && record.PatronID != f.patronID {
		return false
	}

	if f.onlyOpen && !record.IsOpen() {
		return false
	}

	if !f.borrowedFrom.IsZero() && record.BorrowedAt.Before(f.borrowedFrom) {
		return false
	}

	if !f.borrowedUntil.IsZero() && record.BorrowedAt.After(f.borrowedUntil) {
		return false
	}

	return true
}

/***** LoanFilterBuilder *****/

// LoanFilterBuilder builds a LoanFilter. It is designed to only allow the
// "useful" combinations for the lending workflow:
//
//   - any loan (unscoped, for reporting)
//   - (book)
//   - (patron)
//   - (book AND patron) -> the pair the core invariant is scoped over
//
// each optionally narrowed to open records and/or a borrow-time window.
type LoanFilterBuilder interface {
	// ForBook scopes the filter to records referencing the given book.
	ForBook(bookID uuid.UUID) CompletableLoanFilterBuilder

	// ForPatron scopes the filter to records referencing the given patron.
	ForPatron(patronID uuid.UUID) CompletableLoanFilterBuilder

	// ForPair scopes the filter to the (book, patron) pair.
	ForPair(bookID uuid.UUID, patronID uuid.UUID) CompletableLoanFilterBuilder

	// MatchingAnyLoan leaves the filter unscoped.
	MatchingAnyLoan() CompletableLoanFilterBuilder
}

type CompletableLoanFilterBuilder interface {
	// OnlyOpen narrows the filter to records whose return time is not set.
	OnlyOpen() CompletableLoanFilterBuilder

	// BorrowedFrom narrows the filter to records borrowed at or after the given time.
	BorrowedFrom(from time.Time) CompletableLoanFilterBuilder

	// BorrowedUntil narrows the filter to records borrowed at or before the given time.
	BorrowedUntil(until time.Time) CompletableLoanFilterBuilder

	// Finalize returns the built LoanFilter.
	Finalize() LoanFilter
}

// loanFilterBuilder implements all the interfaces of LoanFilterBuilder.
type loanFilterBuilder struct {
	filter LoanFilter
}

// BuildLoanFilter creates a LoanFilterBuilder which must eventually be
// finalized with Finalize().
func BuildLoanFilter() LoanFilterBuilder {
	return loanFilterBuilder{}
}

// ForBook scopes the filter to records referencing the given book.
func (fb loanFilterBuilder) ForBook(bookID uuid.UUID) CompletableLoanFilterBuilder {
	fb.filter.bookID = bookID
	fb.filter.hasBookID = bookID != uuid.Nil

	return fb
}

// ForPatron scopes the filter to records referencing the given patron.
func (fb loanFilterBuilder) ForPatron(patronID uuid.UUID) CompletableLoanFilterBuilder {
	fb.filter.patronID = patronID
	fb.filter.hasPatronID = patronID != uuid.Nil

	return fb
}

// ForPair scopes the filter to the (book, patron) pair.
func (fb loanFilterBuilder) ForPair(bookID uuid.UUID, patronID uuid.UUID) CompletableLoanFilterBuilder {
	fb.filter.bookID = bookID
	fb.filter.hasBookID = bookID != uuid.Nil
	fb.filter.patronID = patronID
	fb.filter.hasPatronID = patronID != uuid.Nil

	return fb
}

// MatchingAnyLoan leaves the filter unscoped.
func (fb loanFilterBuilder) MatchingAnyLoan() CompletableLoanFilterBuilder {
	return fb
}

// OnlyOpen narrows the filter to records whose return time is not set.
func (fb loanFilterBuilder) OnlyOpen() CompletableLoanFilterBuilder {
	fb.filter.onlyOpen = true

	return fb
}

// BorrowedFrom narrows the filter to records borrowed at or after the given time.
func (fb loanFilterBuilder) BorrowedFrom(from time.Time) CompletableLoanFilterBuilder {
	fb.filter.borrowedFrom = from

	return fb
}

// BorrowedUntil narrows the filter to records borrowed at or before the given time.
func (fb loanFilterBuilder) BorrowedUntil(until time.Time) CompletableLoanFilterBuilder {
	fb.filter.borrowedUntil = until

	return fb
}

// Finalize returns the built LoanFilter.
func (fb loanFilterBuilder) Finalize() LoanFilter {
	return fb.filter
}
