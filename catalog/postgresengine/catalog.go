package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ragalabs/loan-ledger-go/catalog"
	"github.com/ragalabs/loan-ledger-go/internal/adapters"
	"github.com/ragalabs/loan-ledger-go/ledger"
)

const (
	defaultBooksTableName   = "books"
	defaultPatronsTableName = "patrons"

	colBookID          = "book_id"
	colTitle           = "title"
	colAuthor          = "author"
	colPublicationYear = "publication_year"
	colISBN            = "isbn"

	colPatronID    = "patron_id"
	colName        = "name"
	colContactInfo = "contact_information"

	dialectPostgres = "postgres"

	pgCodeUniqueViolation = "23505"
)

// Catalog is the Postgres implementation of the book and patron catalog.
type Catalog struct {
	db               adapters.DBAdapter
	booksTableName   string
	patronsTableName string
	logger           ledger.Logger
}

// NewCatalogFromPGXPool creates a new Catalog using a pgx pool with optional
// configuration.
func NewCatalogFromPGXPool(db *pgxpool.Pool, options ...Option) (*Catalog, error) {
	if db == nil {
		return nil, ledger.ErrNilDatabaseConnection
	}

	return newCatalog(adapters.NewPGXAdapter(db), options...)
}

// NewCatalogFromSQLDB creates a new Catalog using a sql.DB with optional
// configuration.
func NewCatalogFromSQLDB(db *sql.DB, options ...Option) (*Catalog, error) {
	if db == nil {
		return nil, ledger.ErrNilDatabaseConnection
	}

	return newCatalog(adapters.NewSQLAdapter(db), options...)
}

// NewCatalogFromSQLX creates a new Catalog using a sqlx.DB with optional
// configuration.
func NewCatalogFromSQLX(db *sqlx.DB, options ...Option) (*Catalog, error) {
	if db == nil {
		return nil, ledger.ErrNilDatabaseConnection
	}

	return newCatalog(adapters.NewSQLXAdapter(db), options...)
}

func newCatalog(db adapters.DBAdapter, options ...Option) (*Catalog, error) {
	c := &Catalog{
		db:               db,
		booksTableName:   defaultBooksTableName,
		patronsTableName: defaultPatronsTableName,
	}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

/***** books *****/

// AddBook persists a new book.
func (c *Catalog) AddBook(ctx context.Context, book catalog.Book) error {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(c.booksTableName).
		Rows(goqu.Record{
			colBookID:          book.ID.String(),
			colTitle:           book.Title,
			colAuthor:          book.Author,
			colPublicationYear: book.PublicationYear,
			colISBN:            book.ISBN,
		})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()

	return c.execInsert(ctx, sqlQuery, toSQLErr)
}

// BookByID retrieves a single book, returning catalog.ErrBookNotFound
// wrapped with the id when no row matches.
func (c *Catalog) BookByID(ctx context.Context, bookID uuid.UUID) (catalog.Book, error) {
	var empty catalog.Book

	selectStmt := goqu.Dialect(dialectPostgres).
		From(c.booksTableName).
		Select(colBookID, colTitle, colAuthor, colPublicationYear, colISBN).
		Where(goqu.C(colBookID).Eq(bookID.String()))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()

	books, err := c.queryBooks(ctx, sqlQuery, toSQLErr)
	if err != nil {
		return empty, err
	}

	if len(books) == 0 {
		return empty, fmt.Errorf("%w: %s", catalog.ErrBookNotFound, bookID)
	}

	return books[0], nil
}

// AllBooks retrieves all books ordered by title.
func (c *Catalog) AllBooks(ctx context.Context) (catalog.Books, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(c.booksTableName).
		Select(colBookID, colTitle, colAuthor, colPublicationYear, colISBN).
		Order(goqu.I(colTitle).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()

	return c.queryBooks(ctx, sqlQuery, toSQLErr)
}

// UpdateBook persists changed attributes of an existing book, returning
// catalog.ErrBookNotFound wrapped with the id when no row matches.
func (c *Catalog) UpdateBook(ctx context.Context, book catalog.Book) error {
	updateStmt := goqu.Dialect(dialectPostgres).
		Update(c.booksTableName).
		Set(goqu.Record{
			colTitle:           book.Title,
			colAuthor:          book.Author,
			colPublicationYear: book.PublicationYear,
			colISBN:            book.ISBN,
		}).
		Where(goqu.C(colBookID).Eq(book.ID.String()))

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()

	return c.execExpectingRow(ctx, sqlQuery, toSQLErr, fmt.Errorf("%w: %s", catalog.ErrBookNotFound, book.ID))
}

// RemoveBook deletes a book, returning catalog.ErrBookNotFound wrapped with
// the id when no row matches. The caller is responsible for checking the
// ledger for open loans first, see the lending service.
func (c *Catalog) RemoveBook(ctx context.Context, bookID uuid.UUID) error {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(c.booksTableName).
		Where(goqu.C(colBookID).Eq(bookID.String()))

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()

	return c.execExpectingRow(ctx, sqlQuery, toSQLErr, fmt.Errorf("%w: %s", catalog.ErrBookNotFound, bookID))
}

func (c *Catalog) queryBooks(ctx context.Context, sqlQuery string, toSQLErr error) (catalog.Books, error) {
	if toSQLErr != nil {
		return nil, errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := c.db.Query(ctx, sqlQuery)
	if queryErr != nil {
		c.logError("catalog query failed", queryErr, sqlQuery)

		return nil, errors.Join(catalog.ErrQueryingCatalogFailed, queryErr)
	}
	defer c.closeRows(rows)

	books := make(catalog.Books, 0)

	for rows.Next() {
		var (
			bookID          string
			title           string
			author          string
			publicationYear int
			isbn            string
		)

		if scanErr := rows.Scan(&bookID, &title, &author, &publicationYear, &isbn); scanErr != nil {
			return nil, errors.Join(catalog.ErrScanningRowFailed, scanErr)
		}

		parsedBookID, parseErr := uuid.Parse(bookID)
		if parseErr != nil {
			return nil, errors.Join(catalog.ErrScanningRowFailed, parseErr)
		}

		books = append(books, catalog.Book{
			ID:              parsedBookID,
			Title:           title,
			Author:          author,
			PublicationYear: publicationYear,
			ISBN:            isbn,
		})
	}

	return books, nil
}

/***** patrons *****/

// AddPatron persists a new patron.
func (c *Catalog) AddPatron(ctx context.Context, patron catalog.Patron) error {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(c.patronsTableName).
		Rows(goqu.Record{
			colPatronID:    patron.ID.String(),
			colName:        patron.Name,
			colContactInfo: patron.ContactInformation,
		})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()

	return c.execInsert(ctx, sqlQuery, toSQLErr)
}

// PatronByID retrieves a single patron, returning catalog.ErrPatronNotFound
// wrapped with the id when no row matches.
func (c *Catalog) PatronByID(ctx context.Context, patronID uuid.UUID) (catalog.Patron, error) {
	var empty catalog.Patron

	selectStmt := goqu.Dialect(dialectPostgres).
		From(c.patronsTableName).
		Select(colPatronID, colName, colContactInfo).
		Where(goqu.C(colPatronID).Eq(patronID.String()))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()

	patrons, err := c.queryPatrons(ctx, sqlQuery, toSQLErr)
	if err != nil {
		return empty, err
	}

	if len(patrons) == 0 {
		return empty, fmt.Errorf("%w: %s", catalog.ErrPatronNotFound, patronID)
	}

	return patrons[0], nil
}

// AllPatrons retrieves all patrons ordered by name.
func (c *Catalog) AllPatrons(ctx context.Context) (catalog.Patrons, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(c.patronsTableName).
		Select(colPatronID, colName, colContactInfo).
		Order(goqu.I(colName).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()

	return c.queryPatrons(ctx, sqlQuery, toSQLErr)
}

// UpdatePatron persists changed attributes of an existing patron, returning
// catalog.ErrPatronNotFound wrapped with the id when no row matches.
func (c *Catalog) UpdatePatron(ctx context.Context, patron catalog.Patron) error {
	updateStmt := goqu.Dialect(dialectPostgres).
		Update(c.patronsTableName).
		Set(goqu.Record{
			colName:        patron.Name,
			colContactInfo: patron.ContactInformation,
		}).
		Where(goqu.C(colPatronID).Eq(patron.ID.String()))

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()

	return c.execExpectingRow(ctx, sqlQuery, toSQLErr, fmt.Errorf("%w: %s", catalog.ErrPatronNotFound, patron.ID))
}

// RemovePatron deletes a patron, returning catalog.ErrPatronNotFound wrapped
// with the id when no row matches. The caller is responsible for checking
// the ledger for open loans first, see the lending service.
func (c *Catalog) RemovePatron(ctx context.Context, patronID uuid.UUID) error {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(c.patronsTableName).
		Where(goqu.C(colPatronID).Eq(patronID.String()))

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()

	return c.execExpectingRow(ctx, sqlQuery, toSQLErr, fmt.Errorf("%w: %s", catalog.ErrPatronNotFound, patronID))
}

func (c *Catalog) queryPatrons(ctx context.Context, sqlQuery string, toSQLErr error) (catalog.Patrons, error) {
	if toSQLErr != nil {
		return nil, errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := c.db.Query(ctx, sqlQuery)
	if queryErr != nil {
		c.logError("catalog query failed", queryErr, sqlQuery)

		return nil, errors.Join(catalog.ErrQueryingCatalogFailed, queryErr)
	}
	defer c.closeRows(rows)

	patrons := make(catalog.Patrons, 0)

	for rows.Next() {
		var (
			patronID    string
			name        string
			contactInfo string
		)

		if scanErr := rows.Scan(&patronID, &name, &contactInfo); scanErr != nil {
			return nil, errors.Join(catalog.ErrScanningRowFailed, scanErr)
		}

		parsedPatronID, parseErr := uuid.Parse(patronID)
		if parseErr != nil {
			return nil, errors.Join(catalog.ErrScanningRowFailed, parseErr)
		}

		patrons = append(patrons, catalog.Patron{
			ID:                 parsedPatronID,
			Name:               name,
			ContactInformation: contactInfo,
		})
	}

	return patrons, nil
}

/***** shared statement execution *****/

func (c *Catalog) execInsert(ctx context.Context, sqlQuery string, toSQLErr error) error {
	if toSQLErr != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	if _, execErr := c.db.Exec(ctx, sqlQuery); execErr != nil {
		if isUniqueViolation(execErr) {
			return errors.Join(catalog.ErrDuplicateEntry, execErr)
		}

		c.logError("catalog insert failed", execErr, sqlQuery)

		return errors.Join(catalog.ErrPersistingFailed, execErr)
	}

	return nil
}

func (c *Catalog) execExpectingRow(ctx context.Context, sqlQuery string, toSQLErr error, notFound error) error {
	if toSQLErr != nil {
		return errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	result, execErr := c.db.Exec(ctx, sqlQuery)
	if execErr != nil {
		c.logError("catalog statement failed", execErr, sqlQuery)

		return errors.Join(catalog.ErrPersistingFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		return errors.Join(catalog.ErrPersistingFailed, rowsAffectedErr)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgCodeUniqueViolation
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgCodeUniqueViolation
	}

	return false
}

func (c *Catalog) logError(msg string, err error, sqlQuery string) {
	if c.logger != nil {
		c.logger.Error(msg, "error", err.Error(), "query", sqlQuery)
	}
}

func (c *Catalog) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if c.logger != nil {
			c.logger.Warn("failed to close rows iterator", "error", closeErr.Error())
		}
	}
}
