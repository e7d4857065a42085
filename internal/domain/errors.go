package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidTier is returned when a difficulty tier is not one of the
	// recognized values.
	ErrInvalidTier = errors.New("invalid difficulty tier")

	// ErrInvalidStatus is returned when a session status is not valid.
	ErrInvalidStatus = errors.New("invalid session status")

	// ErrInvalidStatusTransition is returned when a session status change
	// would violate the lifecycle state machine. Status transitions are
	// monotonic: a terminal session never re-enters in_progress.
	ErrInvalidStatusTransition = errors.New("invalid session status transition")

	// ErrEmptyAnswer is returned when a submitted answer payload is empty.
	ErrEmptyAnswer = errors.New("submitted answer cannot be empty")

	// ErrInvalidResponseTime is returned when a response time is negative.
	ErrInvalidResponseTime = errors.New("response time cannot be negative")

	// ErrQuotaExhausted is returned when an answer would be recorded against
	// a band whose quota has already been fully consumed.
	ErrQuotaExhausted = errors.New("band quota already exhausted")

	// ErrTraceIndexMismatch is returned when a session's answer trace length
	// diverges from its current index. This indicates corruption and is
	// never silently repaired.
	ErrTraceIndexMismatch = errors.New("answer trace length does not match current index")

	// ErrQuotaArithmetic is returned when the remaining quota plus the trace
	// length no longer adds up to the configured session total.
	ErrQuotaArithmetic = errors.New("quota arithmetic mismatch")
)
