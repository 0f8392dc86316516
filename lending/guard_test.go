package lending_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerengine "github.com/ragalabs/loan-ledger-go/ledger/memoryengine"
	"github.com/ragalabs/loan-ledger-go/lending"
)

func Test_EnsureBookDeletable_When_NoOpenLoanExists(t *testing.T) {
	// arrange
	ll := ledgerengine.NewLoanLedger()
	guard, err := lending.NewDeletionGuard(ll)
	require.NoError(t, err)

	// act
	err = guard.EnsureBookDeletable(context.Background(), uuid.New())

	// assert
	assert.NoError(t, err)
}

func Test_EnsureBookDeletable_When_OpenLoansExist(t *testing.T) {
	// arrange
	ll := ledgerengine.NewLoanLedger()
	guard, err := lending.NewDeletionGuard(ll)
	require.NoError(t, err)

	bookID := uuid.New()
	borrowedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err = ll.Borrow(context.Background(), bookID, uuid.New(), borrowedAt)
	require.NoError(t, err)

	_, err = ll.Borrow(context.Background(), bookID, uuid.New(), borrowedAt)
	require.NoError(t, err)

	// act
	err = guard.EnsureBookDeletable(context.Background(), bookID)

	// assert
	require.ErrorIs(t, err, lending.ErrOpenLoansExist)
	assert.ErrorContains(t, err, "2 open loan(s)", "the error should carry the open-loan count")
}

func Test_EnsureBookDeletable_IgnoresClosedLoans(t *testing.T) {
	// arrange
	ll := ledgerengine.NewLoanLedger()
	guard, err := lending.NewDeletionGuard(ll)
	require.NoError(t, err)

	bookID := uuid.New()
	patronID := uuid.New()
	borrowedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err = ll.Borrow(context.Background(), bookID, patronID, borrowedAt)
	require.NoError(t, err)

	_, err = ll.Return(context.Background(), bookID, patronID, borrowedAt.Add(time.Hour))
	require.NoError(t, err)

	// act
	err = guard.EnsureBookDeletable(context.Background(), bookID)

	// assert
	assert.NoError(t, err)
}

func Test_EnsurePatronDeletable_When_OpenLoansExist(t *testing.T) {
	// arrange
	ll := ledgerengine.NewLoanLedger()
	guard, err := lending.NewDeletionGuard(ll)
	require.NoError(t, err)

	patronID := uuid.New()
	borrowedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err = ll.Borrow(context.Background(), uuid.New(), patronID, borrowedAt)
	require.NoError(t, err)

	// act
	err = guard.EnsurePatronDeletable(context.Background(), patronID)

	// assert
	require.ErrorIs(t, err, lending.ErrOpenLoansExist)
	assert.ErrorContains(t, err, "1 open loan(s)")
}

func Test_EnsurePatronDeletable_When_NoOpenLoanExists(t *testing.T) {
	// arrange
	ll := ledgerengine.NewLoanLedger()
	guard, err := lending.NewDeletionGuard(ll)
	require.NoError(t, err)

	// act
	err = guard.EnsurePatronDeletable(context.Background(), uuid.New())

	// assert
	assert.NoError(t, err)
}
