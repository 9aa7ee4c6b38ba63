// Package postgres provides PostgreSQL implementations of the store
// interfaces. It maps database-level failures (constraint violations,
// missing rows) onto the store package's sentinel errors so callers
// never depend on driver details.
package postgres
