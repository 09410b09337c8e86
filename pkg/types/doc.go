// Package types defines the shared domain types for docquery:
// documents discovered by the loader, chunks produced by the chunker,
// retrieval results, and the error taxonomy used across components.
//
// # Error Classification
//
// Errors fall into three classes that callers are expected to
// distinguish with errors.Is:
//
//   - Configuration errors (ErrMissingAPIKey, ErrIndexNotBuilt,
//     ErrRootNotFound): fatal, fix the environment and retry manually.
//   - Provider errors (ErrProviderFailed): the hosted embedding/LLM
//     service failed; check network, credentials, or quota.
//   - Input errors (ErrEmptyQuestion): caller passed invalid input.
//
// The distinction matters operationally: ErrIndexNotBuilt means "run
// ingest first" while ErrProviderFailed means "the index is fine, the
// hosted service is not".
package types
