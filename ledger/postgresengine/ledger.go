package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ragalabs/loan-ledger-go/internal/adapters"
	"github.com/ragalabs/loan-ledger-go/ledger"
)

const (
	defaultLoansTableName = "loans"

	colLoanID     = "loan_id"
	colBookID     = "book_id"
	colPatronID   = "patron_id"
	colBorrowedAt = "borrowed_at"
	colReturnedAt = "returned_at"

	ctePairState   = "pair_state"
	aliasOpenCount = "open_count"
	aliasTotal     = "total"

	dialectPostgres = "postgres"

	pgCodeUniqueViolation     = "23505"
	pgCodeSerializationError  = "40001"
	pgCodeDeadlockDetected    = "40P01"
	uniqueOpenLoanIndexSuffix = "one_open_loan_per_pair"
)

type sqlQueryString = string

// LoanLedger is the Postgres implementation of the lending ledger. It owns
// the set of loan records and guarantees that for any (book, patron) pair at
// most one record is open at any time.
type LoanLedger struct {
	db               adapters.DBAdapter
	loansTableName   string
	logger           ledger.Logger
	metricsCollector ledger.MetricsCollector
	tracingCollector ledger.TracingCollector
	contextualLogger ledger.ContextualLogger
}

// NewLoanLedgerFromPGXPool creates a new LoanLedger using a pgx pool with
// optional configuration.
func NewLoanLedgerFromPGXPool(db *pgxpool.Pool, options ...Option) (*LoanLedger, error) {
	if db == nil {
		return nil, ledger.ErrNilDatabaseConnection
	}

	return newLoanLedger(adapters.NewPGXAdapter(db), options...)
}

// NewLoanLedgerFromPGXPoolWithReplica creates a new LoanLedger using a pgx
// pool for writes and a replica pool for eventually consistent reads.
func NewLoanLedgerFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*LoanLedger, error) {
	if db == nil || replica == nil {
		return nil, ledger.ErrNilDatabaseConnection
	}

	return newLoanLedger(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewLoanLedgerFromSQLDB creates a new LoanLedger using a sql.DB with
// optional configuration.
func NewLoanLedgerFromSQLDB(db *sql.DB, options ...Option) (*LoanLedger, error) {
	if db == nil {
		return nil, ledger.ErrNilDatabaseConnection
	}

	return newLoanLedger(adapters.NewSQLAdapter(db), options...)
}

// NewLoanLedgerFromSQLX creates a new LoanLedger using a sqlx.DB with
// optional configuration.
func NewLoanLedgerFromSQLX(db *sqlx.DB, options ...Option) (*LoanLedger, error) {
	if db == nil {
		return nil, ledger.ErrNilDatabaseConnection
	}

	return newLoanLedger(adapters.NewSQLXAdapter(db), options...)
}

func newLoanLedger(db adapters.DBAdapter, options ...Option) (*LoanLedger, error) {
	ll := &LoanLedger{
		db:             db,
		loansTableName: defaultLoansTableName,
	}

	for _, option := range options {
		if err := option(ll); err != nil {
			return nil, err
		}
	}

	return ll, nil
}

// Borrow creates a new open loan record for the given pair, with the
// invariant check and the insert executed as one atomic statement.
//
// It returns ledger.ErrOpenLoanExists - and mutates nothing - when the pair
// already has an open loan, either because the guarded insert affected no
// rows or because the partial unique index rejected a racing insert.
func (ll *LoanLedger) Borrow(
	ctx context.Context,
	bookID uuid.UUID,
	patronID uuid.UUID,
	borrowedAt time.Time,
) (ledger.LoanRecord, error) {

	var empty ledger.LoanRecord

	record, buildRecordErr := ledger.BuildLoanRecord(bookID, patronID, borrowedAt)
	if buildRecordErr != nil {
		return empty, buildRecordErr
	}

	obs, ctx := ll.startOperation(ctx, operationBorrow, map[string]string{
		spanAttrBookID:   bookID.String(),
		spanAttrPatronID: patronID.String(),
	})

	ctx = ledger.WithStrongConsistency(ctx)

	sqlQuery, buildQueryErr := ll.buildBorrowQuery(record)
	if buildQueryErr != nil {
		ll.logError(ctx, logMsgBuildBorrowQueryFailed, buildQueryErr)
		obs.finishError(errorTypeBuildQuery, 0)

		return empty, buildQueryErr
	}

	start := time.Now()
	tag, execErr := ll.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	ll.logQueryWithDuration(ctx, sqlQuery, operationBorrow, duration)

	if execErr != nil {
		classified := ll.classifyStorageError(execErr, ledger.ErrBorrowFailed)

		if errors.Is(classified, ledger.ErrOpenLoanExists) {
			ll.logConflict(ctx, bookID, patronID)
			obs.finishConflict(duration)

			return empty, classified
		}

		ll.logError(ctx, logMsgBorrowExecFailed, execErr, logAttrQuery, sqlQuery)
		obs.finishError(errorTypeDatabase, duration)

		return empty, classified
	}

	rowsAffected, rowsAffectedErr := tag.RowsAffected()
	if rowsAffectedErr != nil {
		ll.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		obs.finishError(errorTypeDatabase, duration)

		return empty, errors.Join(ledger.ErrBorrowFailed, rowsAffectedErr)
	}

	if rowsAffected == 0 {
		ll.logConflict(ctx, bookID, patronID)
		obs.finishConflict(duration)

		return empty, ledger.ErrOpenLoanExists
	}

	ll.logOperation(ctx, logMsgLoanBorrowed,
		logAttrLoanID, record.ID.String(),
		logAttrDurationMS, toMilliseconds(duration))
	obs.finishSuccess(duration, map[string]string{spanAttrLoanID: record.ID.String()})

	return record, nil
}

// Return closes the open loan record for the given pair, with the lookup and
// the update executed as one atomic statement. The update is guarded by a CTE
// counting open loans for the pair and only applies when exactly one exists.
//
// It returns ledger.ErrNoOpenLoanFound when the pair has no open loan, and
// ledger.ErrMultipleOpenLoans when more than one open record was found - the
// latter indicates broken storage consistency and is alarmed via the logger,
// with no record modified so the corrupted state stays intact for inspection.
func (ll *LoanLedger) Return(
	ctx context.Context,
	bookID uuid.UUID,
	patronID uuid.UUID,
	returnedAt time.Time,
) (ledger.LoanRecord, error) {

	var empty ledger.LoanRecord

	obs, ctx := ll.startOperation(ctx, operationReturn, map[string]string{
		spanAttrBookID:   bookID.String(),
		spanAttrPatronID: patronID.String(),
	})

	ctx = ledger.WithStrongConsistency(ctx)

	sqlQuery, buildQueryErr := ll.buildReturnQuery(bookID, patronID, returnedAt)
	if buildQueryErr != nil {
		ll.logError(ctx, logMsgBuildReturnQueryFailed, buildQueryErr)
		obs.finishError(errorTypeBuildQuery, 0)

		return empty, buildQueryErr
	}

	start := time.Now()
	rows, queryErr := ll.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	ll.logQueryWithDuration(ctx, sqlQuery, operationReturn, duration)

	if queryErr != nil {
		classified := ll.classifyStorageError(queryErr, ledger.ErrReturnFailed)
		ll.logError(ctx, logMsgReturnExecFailed, queryErr, logAttrQuery, sqlQuery)
		obs.finishError(errorTypeDatabase, duration)

		return empty, classified
	}
	defer ll.closeRows(rows)

	closedRecords, scanErr := ll.scanClosedRecords(rows, bookID, patronID, returnedAt)
	if scanErr != nil {
		ll.logError(ctx, logMsgScanRowFailed, scanErr)
		obs.finishError(errorTypeScanRow, duration)

		return empty, scanErr
	}

	switch len(closedRecords) {
	case 0:
		// the guard refuses the update both when no open loan exists and
		// when several do, a follow-up count tells the two cases apart
		openCount, countErr := ll.openLoanCountForPair(ctx, bookID, patronID)
		if countErr != nil {
			ll.logError(ctx, logMsgDBQueryFailed, countErr)
			obs.finishError(errorTypeDatabase, duration)

			return empty, countErr
		}

		if openCount > 1 {
			ll.alarmCorruption(ctx, bookID, patronID, openCount)
			obs.finishError(errorTypeCorruption, duration)

			return empty, ledger.ErrMultipleOpenLoans
		}

		obs.finishError(errorTypeNoOpenLoan, duration)

		return empty, ledger.ErrNoOpenLoanFound

	case 1:
		ll.logOperation(ctx, logMsgLoanReturned,
			logAttrLoanID, closedRecords[0].ID.String(),
			logAttrDurationMS, toMilliseconds(duration))
		obs.finishSuccess(duration, map[string]string{spanAttrLoanID: closedRecords[0].ID.String()})

		return closedRecords[0], nil

	default:
		ll.alarmCorruption(ctx, bookID, patronID, len(closedRecords))
		obs.finishError(errorTypeCorruption, duration)

		return empty, ledger.ErrMultipleOpenLoans
	}
}

// Loans retrieves the loan records matching the given filter.
func (ll *LoanLedger) Loans(ctx context.Context, filter ledger.LoanFilter) (ledger.LoanRecords, error) {
	var empty ledger.LoanRecords

	obs, ctx := ll.startOperation(ctx, operationQuery, nil)

	sqlQuery, buildQueryErr := ll.buildSelectQuery(filter)
	if buildQueryErr != nil {
		ll.logError(ctx, logMsgBuildSelectQueryFailed, buildQueryErr)
		obs.finishError(errorTypeBuildQuery, 0)

		return empty, buildQueryErr
	}

	start := time.Now()
	rows, queryErr := ll.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	ll.logQueryWithDuration(ctx, sqlQuery, operationQuery, duration)

	if queryErr != nil {
		ll.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		obs.finishError(errorTypeDatabase, duration)

		return empty, errors.Join(ledger.ErrQueryingLoansFailed, queryErr)
	}
	defer ll.closeRows(rows)

	records, scanErr := ll.scanRecords(rows)
	if scanErr != nil {
		ll.logError(ctx, logMsgScanRowFailed, scanErr)
		obs.finishError(errorTypeScanRow, duration)

		return empty, scanErr
	}

	ll.logOperation(ctx, logMsgQueryCompleted,
		logAttrRecordCount, len(records),
		logAttrDurationMS, toMilliseconds(duration))
	obs.finishQuerySuccess(len(records), duration)

	return records, nil
}

// CountOpenLoans counts the open loan records matching the given filter,
// regardless of whether the filter itself is narrowed to open records.
// It is the query behind the deletion guard.
func (ll *LoanLedger) CountOpenLoans(ctx context.Context, filter ledger.LoanFilter) (int, error) {
	obs, ctx := ll.startOperation(ctx, operationCount, nil)

	sqlQuery, buildQueryErr := ll.buildCountOpenQuery(filter)
	if buildQueryErr != nil {
		ll.logError(ctx, logMsgBuildSelectQueryFailed, buildQueryErr)
		obs.finishError(errorTypeBuildQuery, 0)

		return 0, buildQueryErr
	}

	start := time.Now()
	rows, queryErr := ll.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	ll.logQueryWithDuration(ctx, sqlQuery, operationCount, duration)

	if queryErr != nil {
		ll.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		obs.finishError(errorTypeDatabase, duration)

		return 0, errors.Join(ledger.ErrQueryingLoansFailed, queryErr)
	}
	defer ll.closeRows(rows)

	var count int

	for rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			ll.logError(ctx, logMsgScanRowFailed, scanErr)
			obs.finishError(errorTypeScanRow, duration)

			return 0, errors.Join(ledger.ErrScanningRowFailed, scanErr)
		}
	}

	obs.finishQuerySuccess(count, duration)

	return count, nil
}

// openLoanCountForPair counts the open loans of one pair outside of the
// operation observer, as a diagnostic for a refused return.
func (ll *LoanLedger) openLoanCountForPair(ctx context.Context, bookID uuid.UUID, patronID uuid.UUID) (int, error) {
	filter := ledger.BuildLoanFilter().ForPair(bookID, patronID).Finalize()

	sqlQuery, buildQueryErr := ll.buildCountOpenQuery(filter)
	if buildQueryErr != nil {
		return 0, buildQueryErr
	}

	rows, queryErr := ll.db.Query(ctx, sqlQuery)
	if queryErr != nil {
		return 0, errors.Join(ledger.ErrQueryingLoansFailed, queryErr)
	}
	defer ll.closeRows(rows)

	var count int

	for rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			return 0, errors.Join(ledger.ErrScanningRowFailed, scanErr)
		}
	}

	return count, nil
}

/***** query building *****/

func (ll *LoanLedger) buildBorrowQuery(record ledger.LoanRecord) (sqlQueryString, error) {
	builder := goqu.Dialect(dialectPostgres)

	// CTE counting open loans for the pair
	cteStmt := builder.
		From(ll.loansTableName).
		Select(goqu.COUNT(goqu.Star()).As(aliasOpenCount)).
		Where(
			goqu.C(colBookID).Eq(record.BookID.String()),
			goqu.C(colPatronID).Eq(record.PatronID.String()),
			goqu.C(colReturnedAt).IsNull(),
		)

	// SELECT feeding the INSERT, guarded by the open-loan count
	selectStmt := builder.
		From(ctePairState).
		Select(
			goqu.V(record.ID.String()),
			goqu.V(record.BookID.String()),
			goqu.V(record.PatronID.String()),
			goqu.V(record.BorrowedAt),
		).
		Where(goqu.C(aliasOpenCount).Eq(goqu.V(0)))

	insertStmt := builder.
		Insert(ll.loansTableName).
		Cols(colLoanID, colBookID, colPatronID, colBorrowedAt).
		FromQuery(selectStmt).
		With(ctePairState, cteStmt)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ledger.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (ll *LoanLedger) buildReturnQuery(
	bookID uuid.UUID,
	patronID uuid.UUID,
	returnedAt time.Time,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	// CTE counting open loans for the pair
	cteStmt := builder.
		From(ll.loansTableName).
		Select(goqu.COUNT(goqu.Star()).As(aliasOpenCount)).
		Where(
			goqu.C(colBookID).Eq(bookID.String()),
			goqu.C(colPatronID).Eq(patronID.String()),
			goqu.C(colReturnedAt).IsNull(),
		)

	// the update only applies when exactly one open loan exists, so a
	// corrupted pair with several open rows is left untouched
	updateStmt := builder.
		Update(ll.loansTableName).
		With(ctePairState, cteStmt).
		Set(goqu.Record{colReturnedAt: returnedAt}).
		From(ctePairState).
		Where(
			goqu.C(colBookID).Eq(bookID.String()),
			goqu.C(colPatronID).Eq(patronID.String()),
			goqu.C(colReturnedAt).IsNull(),
			goqu.C(aliasOpenCount).Eq(goqu.V(1)),
		).
		Returning(colLoanID, colBorrowedAt)

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ledger.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (ll *LoanLedger) buildSelectQuery(filter ledger.LoanFilter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(ll.loansTableName).
		Select(colLoanID, colBookID, colPatronID, colBorrowedAt, colReturnedAt).
		Order(goqu.I(colBorrowedAt).Asc())

	selectStmt = selectStmt.Where(whereClauseFor(filter)...)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ledger.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (ll *LoanLedger) buildCountOpenQuery(filter ledger.LoanFilter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(ll.loansTableName).
		Select(goqu.COUNT(goqu.Star()).As(aliasTotal)).
		Where(goqu.C(colReturnedAt).IsNull()).
		Where(whereClauseFor(filter)...)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ledger.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// whereClauseFor translates the storage-agnostic filter into goqu expressions.
// The semantics must agree with ledger.LoanFilter.Matches.
func whereClauseFor(filter ledger.LoanFilter) []goqu.Expression {
	expressions := make([]goqu.Expression, 0)

	if bookID, ok := filter.BookID(); ok {
		expressions = append(expressions, goqu.C(colBookID).Eq(bookID.String()))
	}

	if patronID, ok := filter.PatronID(); ok {
		expressions = append(expressions, goqu.C(colPatronID).Eq(patronID.String()))
	}

	if filter.OnlyOpenLoans() {
		expressions = append(expressions, goqu.C(colReturnedAt).IsNull())
	}

	if !filter.BorrowedFrom().IsZero() {
		expressions = append(expressions, goqu.C(colBorrowedAt).Gte(filter.BorrowedFrom()))
	}

	if !filter.BorrowedUntil().IsZero() {
		expressions = append(expressions, goqu.C(colBorrowedAt).Lte(filter.BorrowedUntil()))
	}

	return expressions
}

/***** row scanning *****/

func (ll *LoanLedger) scanRecords(rows adapters.DBRows) (ledger.LoanRecords, error) {
	records := make(ledger.LoanRecords, 0)

	for rows.Next() {
		var (
			loanID     string
			bookID     string
			patronID   string
			borrowedAt time.Time
			returnedAt *time.Time
		)

		if scanErr := rows.Scan(&loanID, &bookID, &patronID, &borrowedAt, &returnedAt); scanErr != nil {
			return nil, errors.Join(ledger.ErrScanningRowFailed, scanErr)
		}

		record, buildErr := buildRecordFromRow(loanID, bookID, patronID, borrowedAt, returnedAt)
		if buildErr != nil {
			return nil, buildErr
		}

		records = append(records, record)
	}

	return records, nil
}

func (ll *LoanLedger) scanClosedRecords(
	rows adapters.DBRows,
	bookID uuid.UUID,
	patronID uuid.UUID,
	returnedAt time.Time,
) (ledger.LoanRecords, error) {

	records := make(ledger.LoanRecords, 0, 1)

	for rows.Next() {
		var (
			loanID     string
			borrowedAt time.Time
		)

		if scanErr := rows.Scan(&loanID, &borrowedAt); scanErr != nil {
			return nil, errors.Join(ledger.ErrScanningRowFailed, scanErr)
		}

		parsedLoanID, parseErr := uuid.Parse(loanID)
		if parseErr != nil {
			return nil, errors.Join(ledger.ErrScanningRowFailed, parseErr)
		}

		records = append(records, ledger.BuildClosedLoanRecord(parsedLoanID, bookID, patronID, borrowedAt, returnedAt))
	}

	return records, nil
}

func buildRecordFromRow(
	loanID string,
	bookID string,
	patronID string,
	borrowedAt time.Time,
	returnedAt *time.Time,
) (ledger.LoanRecord, error) {

	parsedLoanID, err := uuid.Parse(loanID)
	if err != nil {
		return ledger.LoanRecord{}, errors.Join(ledger.ErrScanningRowFailed, err)
	}

	parsedBookID, err := uuid.Parse(bookID)
	if err != nil {
		return ledger.LoanRecord{}, errors.Join(ledger.ErrScanningRowFailed, err)
	}

	parsedPatronID, err := uuid.Parse(patronID)
	if err != nil {
		return ledger.LoanRecord{}, errors.Join(ledger.ErrScanningRowFailed, err)
	}

	return ledger.LoanRecord{
		ID:         parsedLoanID,
		BookID:     parsedBookID,
		PatronID:   parsedPatronID,
		BorrowedAt: borrowedAt,
		ReturnedAt: returnedAt,
	}, nil
}

/***** error classification *****/

// classifyStorageError maps driver-level errors onto the ledger's error
// taxonomy: unique violations of the open-loan index become
// ErrOpenLoanExists, serialization failures and deadlocks become
// ErrTransientStorageFailure, everything else is joined with fallback.
func (ll *LoanLedger) classifyStorageError(err error, fallback error) error {
	code, constraint := pgErrorDetails(err)

	switch code {
	case pgCodeUniqueViolation:
		if containsSuffix(constraint, uniqueOpenLoanIndexSuffix) {
			return ledger.ErrOpenLoanExists
		}

	case pgCodeSerializationError, pgCodeDeadlockDetected:
		return errors.Join(ledger.ErrTransientStorageFailure, err)
	}

	return errors.Join(fallback, err)
}

func pgErrorDetails(err error) (code string, constraint string) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code, pgxErr.ConstraintName
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}

	return "", ""
}

func containsSuffix(s string, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

func (ll *LoanLedger) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if ll.logger != nil {
			ll.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}
