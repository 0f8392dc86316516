// Package ledger defines the core types and contracts of the loan ledger:
// the LoanRecord, the LoanFilter builder used by storage engines to build
// queries, the classified sentinel errors of the lending workflow, and the
// dependency-free observability interfaces that storage engines accept.
//
// The package is storage-agnostic. Concrete engines live in the
// postgresengine and memoryengine sub-packages; both enforce the central
// invariant that a (book, patron) pair never has more than one open loan.
package ledger
