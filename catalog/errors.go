package catalog

import (
	"errors"
)

// Lookup errors. Callers wrap these with the id that failed to resolve.
var (
	ErrBookNotFound   = errors.New("book not found")
	ErrPatronNotFound = errors.New("patron not found")
)

// Book validation errors.
var (
	ErrTitleTooShort             = errors.New("title must be at least 2 characters long")
	ErrAuthorTooShort            = errors.New("author must be at least 3 characters long")
	ErrPublicationYearOutOfRange = errors.New("publication year must be between 1000 and the current year")
	ErrInvalidISBN               = errors.New("isbn must consist of exactly 13 digits")
)

// Patron validation errors.
var (
	ErrNameTooShort    = errors.New("name must be at least 3 characters long")
	ErrContactTooShort = errors.New("contact information must be at least 9 characters long")
)

// ErrEmptyTableName signals an empty table name supplied via an engine
// option.
var ErrEmptyTableName = errors.New("empty table name supplied")

// Engine errors, joined with the underlying cause via errors.Join.
var (
	ErrBuildingQueryFailed   = errors.New("building query failed")
	ErrQueryingCatalogFailed = errors.New("querying catalog failed")
	ErrScanningRowFailed     = errors.New("scanning database row failed")
	ErrPersistingFailed      = errors.New("persisting catalog entry failed")
	ErrDuplicateEntry        = errors.New("catalog entry already exists")
)
