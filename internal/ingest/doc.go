// Package ingest orchestrates the ingestion flow: discover documents
// under the configured roots, chunk and embed them, persist a fresh
// vector index, and record the run in the catalog.
//
// Re-running ingestion over the same corpus replaces the prior index
// wholesale; the pipeline never appends to an existing index. Provider
// credentials are checked when the pipeline is constructed, before any
// document is read.
package ingest
