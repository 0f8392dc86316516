package lending

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ragalabs/loan-ledger-go/catalog"
	"github.com/ragalabs/loan-ledger-go/ledger"
)

// LoanLedger is the ledger surface the lending workflow needs. Both
// ledger/postgresengine and ledger/memoryengine satisfy it.
type LoanLedger interface {
	Borrow(ctx context.Context, bookID uuid.UUID, patronID uuid.UUID, borrowedAt time.Time) (ledger.LoanRecord, error)
	Return(ctx context.Context, bookID uuid.UUID, patronID uuid.UUID, returnedAt time.Time) (ledger.LoanRecord, error)
	Loans(ctx context.Context, filter ledger.LoanFilter) (ledger.LoanRecords, error)
	CountOpenLoans(ctx context.Context, filter ledger.LoanFilter) (int, error)
}

// Catalog is the catalog surface the lending workflow needs. Both
// catalog/postgresengine and catalog/memoryengine satisfy it.
type Catalog interface {
	AddBook(ctx context.Context, book catalog.Book) error
	BookByID(ctx context.Context, bookID uuid.UUID) (catalog.Book, error)
	AllBooks(ctx context.Context) (catalog.Books, error)
	UpdateBook(ctx context.Context, book catalog.Book) error
	RemoveBook(ctx context.Context, bookID uuid.UUID) error

	AddPatron(ctx context.Context, patron catalog.Patron) error
	PatronByID(ctx context.Context, patronID uuid.UUID) (catalog.Patron, error)
	AllPatrons(ctx context.Context) (catalog.Patrons, error)
	UpdatePatron(ctx context.Context, patron catalog.Patron) error
	RemovePatron(ctx context.Context, patronID uuid.UUID) error
}
