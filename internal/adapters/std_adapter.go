package adapters

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// stdClient is the query surface shared by sql.DB and sqlx.DB.
type stdClient interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// StdAdapter implements DBAdapter on the database/sql query surface, serving
// both sql.DB and sqlx.DB connections.
type StdAdapter struct {
	client stdClient
}

// NewSQLAdapter creates an adapter for a sql.DB connection.
func NewSQLAdapter(db *sql.DB) *StdAdapter {
	return &StdAdapter{client: db}
}

// NewSQLXAdapter creates an adapter for a sqlx.DB connection.
func NewSQLXAdapter(db *sqlx.DB) *StdAdapter {
	return &StdAdapter{client: db}
}

// Query executes a query and returns wrapped rows.
func (s *StdAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.client.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// Exec executes a statement and returns the wrapped result.
func (s *StdAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.client.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}
