// Package api provides the HTTP surface of the assessment engine: request
// and response models, handlers, error-to-status mapping and the router.
// Handlers stay thin; all assessment semantics live in the service layer.
package api
