// Package config holds the environment-driven configuration of the lending
// server: Postgres connections for all supported adapters, HTTP server
// settings, and the OpenTelemetry provider setup.
package config
