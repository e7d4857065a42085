// Package mocks provides in-memory store implementations for tests. The
// fakes honor the same contracts as the postgres stores, including the
// optimistic-concurrency behavior of session updates, so service tests
// exercise the real failure paths.
package mocks
