package postgresengine

import (
	"github.com/ragalabs/loan-ledger-go/catalog"
	"github.com/ragalabs/loan-ledger-go/ledger"
)

// Option defines a functional option for configuring the Catalog.
type Option func(*Catalog) error

// WithBooksTableName sets a custom table name for the books table.
func WithBooksTableName(tableName string) Option {
	return func(c *Catalog) error {
		if tableName == "" {
			return catalog.ErrEmptyTableName
		}

		c.booksTableName = tableName

		return nil
	}
}

// WithPatronsTableName sets a custom table name for the patrons table.
func WithPatronsTableName(tableName string) Option {
	return func(c *Catalog) error {
		if tableName == "" {
			return catalog.ErrEmptyTableName
		}

		c.patronsTableName = tableName

		return nil
	}
}

// WithLogger sets a logger for SQL errors and warnings.
func WithLogger(logger ledger.Logger) Option {
	return func(c *Catalog) error {
		c.logger = logger

		return nil
	}
}
