// Package cat implements the computerized adaptive testing algorithms:
// ability estimation, difficulty progression with fixed per-band quotas,
// anti-repetition rotation tracking, deterministic question selection and
// post-completion profile synthesis.
//
// Everything in this package is a pure function of a session's persisted
// state and the configured parameters. The only randomness, selection
// tie-breaking, is seeded from the session ID and current index so that a
// resumed session always recomputes the exact question it would have
// produced before a crash.
package cat
