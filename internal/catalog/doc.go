// Package catalog records ingestion runs in a local SQLite database.
//
// The catalog is bookkeeping only. Retrieval is served entirely by the
// vector index; the catalog exists so the status command and the
// get_status MCP tool can report when the corpus was last ingested and
// how large it was, without opening the index.
//
// # Database Drivers
//
// The package supports two SQLite drivers selected at build time:
//
//   - modernc.org/sqlite (default): pure Go, no C compiler needed,
//     cross-compiles cleanly.
//   - github.com/mattn/go-sqlite3 (with -tags cgo_sqlite): faster CGO
//     driver for long-running deployments.
//
// # Schema
//
// Migrations are applied automatically on Open. Each migration runs in
// its own transaction and is recorded in the schema_version table, so
// upgrading an old catalog is a matter of opening it.
package catalog
