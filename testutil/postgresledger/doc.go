// Package postgresledger provides helpers for tests that run against a real
// Postgres database. The database adapter is selected with the ADAPTER_TYPE
// environment variable (pgx, sqldb or sqlx), matching the server binary.
package postgresledger
