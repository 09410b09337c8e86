package types

import "errors"

// Configuration errors. These are fatal, reported immediately, and never
// retried automatically. Callers use errors.Is to distinguish "run ingest
// first" from credential or path problems.
var (
	// ErrMissingAPIKey is returned when the hosted provider credential
	// is absent from configuration.
	ErrMissingAPIKey = errors.New("provider API key not configured")
	// ErrIndexNotBuilt is returned when the persisted index directory
	// does not exist or is unreadable. Run ingest first.
	ErrIndexNotBuilt = errors.New("index not built")
	// ErrRootNotFound is returned when a configured document root
	// directory does not exist or is unreadable.
	ErrRootNotFound = errors.New("document root not found")
)

// Provider errors. Surfaced to the caller, never silently swallowed.
var (
	// ErrProviderFailed wraps network, auth, quota, and timeout failures
	// against the hosted embedding/LLM service.
	ErrProviderFailed = errors.New("provider request failed")
)

// Input errors.
var (
	// ErrEmptyQuestion is returned when a query question is empty or
	// whitespace-only. Rejected before any network cost is incurred.
	ErrEmptyQuestion = errors.New("question cannot be empty")
)

// IsConfigError reports whether err is a fatal configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMissingAPIKey) ||
		errors.Is(err, ErrIndexNotBuilt) ||
		errors.Is(err, ErrRootNotFound)
}

// IsProviderError reports whether err is a hosted-provider failure.
func IsProviderError(err error) bool {
	return errors.Is(err, ErrProviderFailed)
}
