// Package memoryengine provides an in-memory loan ledger with the same
// semantics as the Postgres engine. It is intended for tests and for running
// the lending service without external infrastructure.
//
// Borrow and return calls for the same (book, patron) pair are serialized
// through a per-pair mutex, so the one-open-loan invariant holds under
// concurrent use while operations on distinct pairs proceed in parallel.
package memoryengine
