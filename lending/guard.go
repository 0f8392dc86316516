package lending

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ragalabs/loan-ledger-go/ledger"
)

// DeletionGuard refuses catalog deletions while open loan records reference
// the entry. The check is best-effort: it is not atomic with the deletion
// that follows, so a racing borrow can still slip in between check and
// delete. It protects against accidental deletions, not against adversarial
// interleavings.
type DeletionGuard struct {
	loanLedger LoanLedger
}

// NewDeletionGuard creates a DeletionGuard backed by the given ledger.
func NewDeletionGuard(loanLedger LoanLedger) (*DeletionGuard, error) {
	if loanLedger == nil {
		return nil, ErrNilLoanLedger
	}

	return &DeletionGuard{loanLedger: loanLedger}, nil
}

// EnsureBookDeletable returns ErrOpenLoansExist wrapped with the open-loan
// count when the book still has open loan records.
func (g *DeletionGuard) EnsureBookDeletable(ctx context.Context, bookID uuid.UUID) error {
	filter := ledger.BuildLoanFilter().ForBook(bookID).OnlyOpen().Finalize()

	return g.ensureNoOpenLoans(ctx, filter)
}

// EnsurePatronDeletable returns ErrOpenLoansExist wrapped with the open-loan
// count when the patron still has open loan records.
func (g *DeletionGuard) EnsurePatronDeletable(ctx context.Context, patronID uuid.UUID) error {
	filter := ledger.BuildLoanFilter().ForPatron(patronID).OnlyOpen().Finalize()

	return g.ensureNoOpenLoans(ctx, filter)
}

func (g *DeletionGuard) ensureNoOpenLoans(ctx context.Context, filter ledger.LoanFilter) error {
	// the count must not be answered by a stale replica
	openCount, err := g.loanLedger.CountOpenLoans(ledger.WithStrongConsistency(ctx), filter)
	if err != nil {
		return err
	}

	if openCount > 0 {
		return fmt.Errorf("%w: %d open loan(s)", ErrOpenLoansExist, openCount)
	}

	return nil
}
