// Package postgres implements the store interfaces on PostgreSQL using the
// pgx stdlib driver. A session is stored as one row with its answer trace,
// pool-reset log, quota accounting and profile serialized as JSONB, plus a
// version column for optimistic concurrency.
package postgres
