// Package domain defines the core business entities of the adaptive
// assessment engine: questions, answer records, assessment sessions and
// learner profiles, together with their validation rules and lifecycle
// invariants.
package domain
