// Package spies provides test doubles for the ledger observability
// interfaces: a slog handler, a metrics collector and a tracing collector
// that capture their calls for inspection.
package spies
