// Package provider talks to the hosted embedding/LLM service.
//
// Two capabilities are exposed behind narrow interfaces: Embedder turns
// text into vectors, Completer turns a prompt into generated text. The
// OpenAI provider implements both over raw HTTP with a bounded client
// timeout and exponential-backoff retry; the local provider is a
// deterministic offline stand-in for development and tests.
//
// # Configuration
//
// Providers take an explicit Config; there is no process-global model
// registration. A hosted provider without an API key fails construction
// with types.ErrMissingAPIKey before any network I/O.
//
// # Caching
//
// Embeddings are cached in-memory by SHA-256 content hash with LRU
// eviction, so re-ingesting an unchanged corpus does not re-pay the
// embedding cost within a process.
//
// # Error Handling
//
// Network, auth, and quota failures surface as types.ErrProviderFailed
// after bounded retry. They are never silently swallowed.
package provider
