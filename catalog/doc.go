// Package catalog holds the reference data of the lending system: the books
// owned by the library and the patrons registered with it. Loan records in
// the ledger reference catalog entries by id.
//
// The package defines storage-agnostic types and validation; the storage
// engines live in the postgresengine and memoryengine sub-packages.
package catalog
