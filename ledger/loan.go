package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNilBookID = errors.New("book id must not be nil")
var ErrNilPatronID = errors.New("patron id must not be nil")
var ErrZeroBorrowTime = errors.New("borrow time must not be zero")

// LoanRecords is an alias type for a slice of LoanRecord.
type LoanRecords = []LoanRecord

// LoanRecord is the unit of the lending ledger: one book borrowed by one
// patron at one point in time. A record is open while ReturnedAt is nil and
// closed once the return time has been set.
//
// While its properties are exported, it should only be constructed with the
// supplied factory methods:
//   - BuildLoanRecord
//   - BuildClosedLoanRecord
type LoanRecord struct {
	ID         uuid.UUID
	BookID     uuid.UUID
	PatronID   uuid.UUID
	BorrowedAt time.Time
	ReturnedAt *time.Time
}

// BuildLoanRecord is a factory method for an open LoanRecord.
//
// It assigns a fresh loan identifier and validates the given references and
// borrow time.
func BuildLoanRecord(bookID uuid.UUID, patronID uuid.UUID, borrowedAt time.Time) (LoanRecord, error) {
	if bookID == uuid.Nil {
		return LoanRecord{}, ErrNilBookID
	}

	if patronID == uuid.Nil {
		return LoanRecord{}, ErrNilPatronID
	}

	if borrowedAt.IsZero() {
		return LoanRecord{}, ErrZeroBorrowTime
	}

	return LoanRecord{
		ID:         uuid.New(),
		BookID:     bookID,
		PatronID:   patronID,
		BorrowedAt: borrowedAt,
	}, nil
}

// BuildClosedLoanRecord is a factory method for a closed LoanRecord,
// used by storage engines when reconstructing records from persisted rows.
func BuildClosedLoanRecord(
	id uuid.UUID,
	bookID uuid.UUID,
	patronID uuid.UUID,
	borrowedAt time.Time,
	returnedAt time.Time,
) LoanRecord {

	return LoanRecord{
		ID:         id,
		BookID:     bookID,
		PatronID:   patronID,
		BorrowedAt: borrowedAt,
		ReturnedAt: &returnedAt,
	}
}

// IsOpen reports whether the loan has not been returned yet.
func (lr LoanRecord) IsOpen() bool {
	return lr.ReturnedAt == nil
}

// Close returns a copy of the record with the return time set.
func (lr LoanRecord) Close(returnedAt time.Time) LoanRecord {
	closed := lr
	closed.ReturnedAt = &returnedAt

	return closed
}
