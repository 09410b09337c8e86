// Package loader discovers documentation files under configured root
// directories and produces the in-memory document set for ingestion.
//
// The loader walks each root recursively, skipping excluded directory
// names (dependency caches, VCS metadata, build output, editor settings)
// and hidden directories, and including only files whose extension
// matches the configured content extensions.
//
// # Deduplication
//
// Roots may overlap (a site generator's content folder nested under the
// project root, for example). Documents are keyed by normalized absolute
// path; the first root to be walked claims a path and later roots never
// re-add it. The result is guaranteed to contain no two documents with
// the same identifier.
//
// # Failure Semantics
//
// A root that does not exist or cannot be read fails the whole load with
// types.ErrRootNotFound. A single file that cannot be read is logged and
// skipped.
package loader
