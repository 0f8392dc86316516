package ledger_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ragalabs/loan-ledger-go/ledger"
)

//nolint:funlen
func Test_LoanFilterBuilder_ValidCombinations(t *testing.T) {
	bookID := uuid.New()
	patronID := uuid.New()

	tests := []struct {
		name     string
		build    func() ledger.LoanFilter
		validate func(t *testing.T, filter ledger.LoanFilter)
	}{
		{
			name: "matching_any_loan_creates_empty_filter",
			build: func() ledger.LoanFilter {
				return ledger.BuildLoanFilter().MatchingAnyLoan().Finalize()
			},
			validate: func(t *testing.T, f ledger.LoanFilter) {
				_, hasBook := f.BookID()
				_, hasPatron := f.PatronID()
				assert.False(t, hasBook)
				assert.False(t, hasPatron)
				assert.False(t, f.OnlyOpenLoans())
				assert.True(t, f.BorrowedFrom().IsZero())
				assert.True(t, f.BorrowedUntil().IsZero())
			},
		},
		{
			name: "book_scoped_filter",
			build: func() ledger.LoanFilter {
				return ledger.BuildLoanFilter().ForBook(bookID).Finalize()
			},
			validate: func(t *testing.T, f ledger.LoanFilter) {
				scopedBook, hasBook := f.BookID()
				_, hasPatron := f.PatronID()
				assert.True(t, hasBook)
				assert.Equal(t, bookID, scopedBook)
				assert.False(t, hasPatron)
			},
		},
		{
			name: "patron_scoped_filter",
			build: func() ledger.LoanFilter {
				return ledger.BuildLoanFilter().ForPatron(patronID).Finalize()
			},
			validate: func(t *testing.T, f ledger.LoanFilter) {
				_, hasBook := f.BookID()
				scopedPatron, hasPatron := f.PatronID()
				assert.False(t, hasBook)
				assert.True(t, hasPatron)
				assert.Equal(t, patronID, scopedPatron)
			},
		},
		{
			name: "pair_scoped_filter",
			build: func() ledger.LoanFilter {
				return ledger.BuildLoanFilter().ForPair(bookID, patronID).Finalize()
			},
			validate: func(t *testing.T, f ledger.LoanFilter) {
				scopedBook, hasBook := f.BookID()
				scopedPatron, hasPatron := f.PatronID()
				assert.True(t, hasBook)
				assert.Equal(t, bookID, scopedBook)
				assert.True(t, hasPatron)
				assert.Equal(t, patronID, scopedPatron)
			},
		},
		{
			name: "pair_with_nil_ids_stays_unscoped",
			build: func() ledger.LoanFilter {
				return ledger.BuildLoanFilter().ForPair(uuid.Nil, uuid.Nil).Finalize()
			},
			validate: func(t *testing.T, f ledger.LoanFilter) {
				_, hasBook := f.BookID()
				_, hasPatron := f.PatronID()
				assert.False(t, hasBook)
				assert.False(t, hasPatron)
			},
		},
		{
			name: "only_open_with_borrow_window",
			build: func() ledger.LoanFilter {
				from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
				until := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)

				return ledger.BuildLoanFilter().
					ForBook(bookID).
					OnlyOpen().
					BorrowedFrom(from).
					BorrowedUntil(until).
					Finalize()
			},
			validate: func(t *testing.T, f ledger.LoanFilter) {
				assert.True(t, f.OnlyOpenLoans())
				assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), f.BorrowedFrom())
				assert.Equal(t, time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC), f.BorrowedUntil())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, tt.build())
		})
	}
}

//nolint:funlen
func Test_LoanFilter_Matches(t *testing.T) {
	bookID := uuid.New()
	patronID := uuid.New()
	otherBookID := uuid.New()
	borrowedAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	openRecord := ledger.LoanRecord{
		ID:         uuid.New(),
		BookID:     bookID,
		PatronID:   patronID,
		BorrowedAt: borrowedAt,
	}

	returnedAt := borrowedAt.Add(24 * time.Hour)
	closedRecord := ledger.BuildClosedLoanRecord(uuid.New(), bookID, patronID, borrowedAt, returnedAt)

	tests := []struct {
		name     string
		filter   ledger.LoanFilter
		record   ledger.LoanRecord
		expected bool
	}{
		{
			name:     "unscoped_filter_matches_everything",
			filter:   ledger.BuildLoanFilter().MatchingAnyLoan().Finalize(),
			record:   openRecord,
			expected: true,
		},
		{
			name:     "matching_book_scope",
			filter:   ledger.BuildLoanFilter().ForBook(bookID).Finalize(),
			record:   openRecord,
			expected: true,
		},
		{
			name:     "mismatching_book_scope",
			filter:   ledger.BuildLoanFilter().ForBook(otherBookID).Finalize(),
			record:   openRecord,
			expected: false,
		},
		{
			name:     "matching_pair_scope",
			filter:   ledger.BuildLoanFilter().ForPair(bookID, patronID).Finalize(),
			record:   openRecord,
			expected: true,
		},
		{
			name:     "pair_scope_rejects_other_patron",
			filter:   ledger.BuildLoanFilter().ForPair(bookID, uuid.New()).Finalize(),
			record:   openRecord,
			expected: false,
		},
		{
			name:     "only_open_matches_open_record",
			filter:   ledger.BuildLoanFilter().MatchingAnyLoan().OnlyOpen().Finalize(),
			record:   openRecord,
			expected: true,
		},
		{
			name:     "only_open_rejects_closed_record",
			filter:   ledger.BuildLoanFilter().MatchingAnyLoan().OnlyOpen().Finalize(),
			record:   closedRecord,
			expected: false,
		},
		{
			name: "borrowed_from_is_inclusive",
			filter: ledger.BuildLoanFilter().MatchingAnyLoan().
				BorrowedFrom(borrowedAt).Finalize(),
			record:   openRecord,
			expected: true,
		},
		{
			name: "borrowed_from_rejects_earlier_record",
			filter: ledger.BuildLoanFilter().MatchingAnyLoan().
				BorrowedFrom(borrowedAt.Add(time.Second)).Finalize(),
			record:   openRecord,
			expected: false,
		},
		{
			name: "borrowed_until_is_inclusive",
			filter: ledger.BuildLoanFilter().MatchingAnyLoan().
				BorrowedUntil(borrowedAt).Finalize(),
			record:   openRecord,
			expected: true,
		},
		{
			name: "borrowed_until_rejects_later_record",
			filter: ledger.BuildLoanFilter().MatchingAnyLoan().
				BorrowedUntil(borrowedAt.Add(-time.Second)).Finalize(),
			record:   openRecord,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filter.Matches(tt.record))
		})
	}
}
