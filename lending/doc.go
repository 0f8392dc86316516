// Package lending implements the lending workflow on top of the catalog and
// the loan ledger: borrowing and returning books, querying loan records, and
// guarding catalog deletions against open loans.
//
// The package depends on small consumer-side interfaces instead of concrete
// engines, so any combination of the Postgres and in-memory engines can back
// a LendingService.
package lending
