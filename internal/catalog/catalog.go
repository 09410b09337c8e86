package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a requested record doesn't exist.
	ErrNotFound = errors.New("not found")
)

// Run records one completed ingestion run.
type Run struct {
	ID          int64
	StartedAt   time.Time
	CompletedAt time.Time
	Documents   int
	Chunks      int
	Duration    time.Duration
}

// DocumentRecord records one document ingested during a run.
type DocumentRecord struct {
	ID          int64
	RunID       int64
	Path        string
	ContentHash [32]byte
	SizeBytes   int64
	Chunks      int
}

// Status summarizes the catalog for the status tool.
type Status struct {
	Ingested      bool
	LastRun       *Run
	TotalRuns     int
	DocumentCount int
	ChunkCount    int
}

// Catalog is the SQLite-backed record of ingestion runs. It is pure
// bookkeeping: the vector index remains the only retrieval source.
type Catalog struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings.
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Open opens (creating if needed) the catalog database at dbPath.
func Open(dbPath string) (*Catalog, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	if err := applyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// RecordRun inserts a completed run and its documents in one transaction.
// Run.ID is populated on success.
func (c *Catalog) RecordRun(ctx context.Context, run *Run, docs []DocumentRecord) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, completed_at, documents, chunks, duration_ms)
		 VALUES (?, ?, ?, ?, ?)`,
		run.StartedAt.UTC(), run.CompletedAt.UTC(), run.Documents, run.Chunks,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get run ID: %w", err)
	}
	run.ID = runID

	for i := range docs {
		docs[i].RunID = runID
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (run_id, path, content_hash, size_bytes, chunks)
			 VALUES (?, ?, ?, ?, ?)`,
			runID, docs[i].Path, docs[i].ContentHash[:], docs[i].SizeBytes, docs[i].Chunks,
		); err != nil {
			return fmt.Errorf("failed to insert document %s: %w", docs[i].Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// LatestRun returns the most recent run, or ErrNotFound.
func (c *Catalog) LatestRun(ctx context.Context) (*Run, error) {
	run := &Run{}
	var durationMs int64
	err := c.db.QueryRowContext(ctx,
		`SELECT id, started_at, completed_at, documents, chunks, duration_ms
		 FROM runs ORDER BY id DESC LIMIT 1`,
	).Scan(&run.ID, &run.StartedAt, &run.CompletedAt, &run.Documents, &run.Chunks, &durationMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return run, nil
}

// ListDocuments returns the documents recorded for a run.
func (c *Catalog) ListDocuments(ctx context.Context, runID int64) ([]DocumentRecord, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, run_id, path, content_hash, size_bytes, chunks
		 FROM documents WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []DocumentRecord
	for rows.Next() {
		var doc DocumentRecord
		var hash []byte
		if err := rows.Scan(&doc.ID, &doc.RunID, &doc.Path, &hash, &doc.SizeBytes, &doc.Chunks); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		copy(doc.ContentHash[:], hash)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// GetStatus summarizes the catalog state.
func (c *Catalog) GetStatus(ctx context.Context) (*Status, error) {
	status := &Status{}

	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&status.TotalRuns); err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}
	if status.TotalRuns == 0 {
		return status, nil
	}

	run, err := c.LatestRun(ctx)
	if err != nil {
		return nil, err
	}

	status.Ingested = true
	status.LastRun = run
	status.DocumentCount = run.Documents
	status.ChunkCount = run.Chunks
	return status, nil
}
