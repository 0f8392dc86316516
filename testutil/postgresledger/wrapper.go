package postgresledger

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	catalogengine "github.com/ragalabs/loan-ledger-go/catalog/postgresengine"
	"github.com/ragalabs/loan-ledger-go/config"
	ledgerengine "github.com/ragalabs/loan-ledger-go/ledger/postgresengine"
)

// Wrapper abstracts over the database adapters so engine tests run the same
// suite against pgx, sql.DB and sqlx connections.
type Wrapper interface {
	GetLoanLedger() *ledgerengine.LoanLedger
	GetCatalog() *catalogengine.Catalog
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing.
type PGXPoolWrapper struct {
	pool    *pgxpool.Pool
	ledger  *ledgerengine.LoanLedger
	catalog *catalogengine.Catalog
}

func (w *PGXPoolWrapper) GetLoanLedger() *ledgerengine.LoanLedger { return w.ledger }
func (w *PGXPoolWrapper) GetCatalog() *catalogengine.Catalog      { return w.catalog }
func (w *PGXPoolWrapper) Close()                                  { w.pool.Close() }

// SQLDBWrapper wraps sql.DB-based testing.
type SQLDBWrapper struct {
	db      *sql.DB
	ledger  *ledgerengine.LoanLedger
	catalog *catalogengine.Catalog
}

func (w *SQLDBWrapper) GetLoanLedger() *ledgerengine.LoanLedger { return w.ledger }
func (w *SQLDBWrapper) GetCatalog() *catalogengine.Catalog      { return w.catalog }
func (w *SQLDBWrapper) Close()                                  { _ = w.db.Close() }

// SQLXWrapper wraps sqlx.DB-based testing.
type SQLXWrapper struct {
	db      *sqlx.DB
	ledger  *ledgerengine.LoanLedger
	catalog *catalogengine.Catalog
}

func (w *SQLXWrapper) GetLoanLedger() *ledgerengine.LoanLedger { return w.ledger }
func (w *SQLXWrapper) GetCatalog() *catalogengine.Catalog      { return w.catalog }
func (w *SQLXWrapper) Close()                                  { _ = w.db.Close() }

// CreateWrapperWithTestConfig creates the wrapper for the adapter selected
// via ADAPTER_TYPE, with optional engine options.
func CreateWrapperWithTestConfig(t testing.TB, options ...ledgerengine.Option) Wrapper {
	t.Helper()

	ctx := context.Background()
	dsn := config.PostgresDSN()

	switch config.SelectedAdapterType() {
	case config.AdapterSQLDB:
		db, err := config.OpenSQLDB(ctx, dsn)
		require.NoError(t, err, "error connecting to database in test setup")

		loanLedger, err := ledgerengine.NewLoanLedgerFromSQLDB(db, options...)
		require.NoError(t, err, "error creating loan ledger")

		cat, err := catalogengine.NewCatalogFromSQLDB(db)
		require.NoError(t, err, "error creating catalog")

		return &SQLDBWrapper{db: db, ledger: loanLedger, catalog: cat}

	case config.AdapterSQLX:
		db, err := config.OpenSQLX(ctx, dsn)
		require.NoError(t, err, "error connecting to database in test setup")

		loanLedger, err := ledgerengine.NewLoanLedgerFromSQLX(db, options...)
		require.NoError(t, err, "error creating loan ledger")

		cat, err := catalogengine.NewCatalogFromSQLX(db)
		require.NoError(t, err, "error creating catalog")

		return &SQLXWrapper{db: db, ledger: loanLedger, catalog: cat}

	default:
		pool, err := config.OpenPGXPool(ctx, dsn)
		require.NoError(t, err, "error connecting to database in test setup")

		loanLedger, err := ledgerengine.NewLoanLedgerFromPGXPool(pool, options...)
		require.NoError(t, err, "error creating loan ledger")

		cat, err := catalogengine.NewCatalogFromPGXPool(pool)
		require.NoError(t, err, "error creating catalog")

		return &PGXPoolWrapper{pool: pool, ledger: loanLedger, catalog: cat}
	}
}

// CleanUp truncates the loans, books and patrons tables.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	execRaw(t, wrapper, "TRUNCATE TABLE loans, books, patrons")
}

// CountLoanRowsInDB counts all rows in the loans table, bypassing the
// engine.
func CountLoanRowsInDB(t testing.TB, wrapper Wrapper) int {
	t.Helper()

	return queryIntRaw(t, wrapper, "SELECT count(*) FROM loans")
}

// CountOpenLoanRowsInDB counts the open rows in the loans table, bypassing
// the engine.
func CountOpenLoanRowsInDB(t testing.TB, wrapper Wrapper) int {
	t.Helper()

	return queryIntRaw(t, wrapper, "SELECT count(*) FROM loans WHERE returned_at IS NULL")
}

// InsertOpenLoanRow inserts an open loan row bypassing the engine.
func InsertOpenLoanRow(t testing.TB, wrapper Wrapper, bookID uuid.UUID, patronID uuid.UUID, borrowedAt time.Time) {
	t.Helper()

	execRaw(t, wrapper, fmt.Sprintf(
		"INSERT INTO loans (loan_id, book_id, patron_id, borrowed_at) VALUES ('%s', '%s', '%s', '%s')",
		uuid.New().String(), bookID.String(), patronID.String(), borrowedAt.Format(time.RFC3339Nano)))
}

// DropOpenLoanIndex drops the partial unique index backing the open-loan
// invariant, to let tests seed the corrupted state the index normally
// prevents. RestoreOpenLoanIndex must be deferred right after calling this.
func DropOpenLoanIndex(t testing.TB, wrapper Wrapper) {
	t.Helper()

	execRaw(t, wrapper, "DROP INDEX IF EXISTS loans_one_open_loan_per_pair")
}

// RestoreOpenLoanIndex truncates the loans table and recreates the partial
// unique index dropped by DropOpenLoanIndex.
func RestoreOpenLoanIndex(t testing.TB, wrapper Wrapper) {
	t.Helper()

	execRaw(t, wrapper, "TRUNCATE TABLE loans")
	execRaw(t, wrapper,
		"CREATE UNIQUE INDEX loans_one_open_loan_per_pair ON loans (book_id, patron_id) WHERE returned_at IS NULL")
}

func execRaw(t testing.TB, wrapper Wrapper, query string) {
	t.Helper()

	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err = w.pool.Exec(context.Background(), query)
	case *SQLDBWrapper:
		_, err = w.db.Exec(query)
	case *SQLXWrapper:
		_, err = w.db.Exec(query)
	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	require.NoError(t, err, "error executing raw statement in test")
}

func queryIntRaw(t testing.TB, wrapper Wrapper, query string) int {
	t.Helper()

	var (
		count int
		err   error
	)

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		err = w.pool.QueryRow(context.Background(), query).Scan(&count)
	case *SQLDBWrapper:
		err = w.db.QueryRow(query).Scan(&count)
	case *SQLXWrapper:
		err = w.db.QueryRow(query).Scan(&count)
	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	require.NoError(t, err, "error querying raw count in test")

	return count
}
