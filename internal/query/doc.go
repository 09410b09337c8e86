// Package query answers natural-language questions against the
// persisted documentation index.
//
// The index handle is expensive to open, so the service loads it lazily
// on the first question and keeps it for the life of the process.
// Concurrent first questions share a single load via singleflight; if
// the load fails (typically because ingest has not run yet), the
// failure is returned to every waiting caller and the next question
// triggers a fresh attempt.
//
// Answers are optionally cached in a small TTL-bounded LRU keyed by the
// normalized question.
package query
