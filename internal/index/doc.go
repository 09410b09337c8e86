// Package index persists and loads the vector index through chromem-go.
//
// The on-disk format belongs entirely to chromem-go and is treated as
// opaque: this package only builds, persists, reloads, and queries it.
// Two narrow capabilities are exposed:
//
//   - Builder.Build: chunk documents, embed, write a fresh persistent
//     index. Builds go to a temporary sibling directory and are swapped
//     into place atomically, so re-running a build is a safe full
//     overwrite and a failed build never corrupts the visible index.
//   - Open: load a persisted index into a read-only Handle whose
//     Retrieve returns the top-K most similar chunks for a query.
//
// The persistence directory has exactly one writer (the builder, run as
// an offline batch step) and one reader (the query service); they are
// never expected to run concurrently against the same directory.
package index
