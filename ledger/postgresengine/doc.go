// Package postgresengine provides the Postgres-backed loan ledger.
//
// The engine enforces the one-open-loan-per-(book, patron) invariant with
// single-statement conditional writes: a borrow is an INSERT ... SELECT
// guarded by a CTE counting open loans for the pair, and a return is an
// UPDATE ... RETURNING guarded the same way, applying only when the pair has
// exactly one open record. Either
// statement is atomic with respect to concurrent borrow/return calls on the
// same pair; a partial unique index on (book_id, patron_id) for open records
// backs the invariant even against storage-level races.
//
// Expected schema:
//
//	CREATE TABLE loans (
//	    loan_id     UUID PRIMARY KEY,
//	    book_id     UUID NOT NULL,
//	    patron_id   UUID NOT NULL,
//	    borrowed_at TIMESTAMP WITH TIME ZONE NOT NULL,
//	    returned_at TIMESTAMP WITH TIME ZONE
//	);
//
//	CREATE UNIQUE INDEX loans_one_open_loan_per_pair
//	    ON loans (book_id, patron_id) WHERE returned_at IS NULL;
//
//	CREATE INDEX loans_book_id_idx ON loans (book_id);
//	CREATE INDEX loans_patron_id_idx ON loans (patron_id);
//
// The engine works with pgxpool.Pool, database/sql and sqlx connections, see
// the NewLoanLedgerFrom... constructors. Observability (logging, metrics,
// tracing) is attached with functional options.
package postgresengine
