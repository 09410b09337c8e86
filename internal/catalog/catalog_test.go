package catalog

import (
	"context"
	"crypto/sha256"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cat.Close() })
	return cat
}

func sampleRun(docs, chunks int) *Run {
	started := time.Now().Add(-2 * time.Second)
	return &Run{
		StartedAt:   started,
		CompletedAt: started.Add(1500 * time.Millisecond),
		Documents:   docs,
		Chunks:      chunks,
		Duration:    1500 * time.Millisecond,
	}
}

func TestRecordAndLatestRun(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	run := sampleRun(2, 7)
	docs := []DocumentRecord{
		{Path: "/docs/guide.md", ContentHash: sha256.Sum256([]byte("guide")), SizeBytes: 1024, Chunks: 4},
		{Path: "/docs/ref.md", ContentHash: sha256.Sum256([]byte("ref")), SizeBytes: 512, Chunks: 3},
	}
	require.NoError(t, cat.RecordRun(ctx, run, docs))
	assert.NotZero(t, run.ID)

	latest, err := cat.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)
	assert.Equal(t, 2, latest.Documents)
	assert.Equal(t, 7, latest.Chunks)
	assert.Equal(t, 1500*time.Millisecond, latest.Duration)
}

func TestLatestRunEmpty(t *testing.T) {
	cat := openTestCatalog(t)
	_, err := cat.LatestRun(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDocuments(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	run := sampleRun(2, 5)
	hash := sha256.Sum256([]byte("content"))
	require.NoError(t, cat.RecordRun(ctx, run, []DocumentRecord{
		{Path: "/docs/b.md", ContentHash: hash, SizeBytes: 10, Chunks: 2},
		{Path: "/docs/a.md", ContentHash: hash, SizeBytes: 20, Chunks: 3},
	}))

	docs, err := cat.ListDocuments(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// Ordered by path.
	assert.Equal(t, "/docs/a.md", docs[0].Path)
	assert.Equal(t, "/docs/b.md", docs[1].Path)
	assert.Equal(t, hash, docs[0].ContentHash)
	assert.Equal(t, run.ID, docs[0].RunID)
}

func TestGetStatus(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	status, err := cat.GetStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.Ingested)
	assert.Zero(t, status.TotalRuns)
	assert.Nil(t, status.LastRun)

	require.NoError(t, cat.RecordRun(ctx, sampleRun(1, 3), nil))
	require.NoError(t, cat.RecordRun(ctx, sampleRun(4, 12), nil))

	status, err = cat.GetStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.Ingested)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, 4, status.DocumentCount)
	assert.Equal(t, 12, status.ChunkCount)
}

func TestReopenAppliesNoNewMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	cat, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, cat.RecordRun(context.Background(), sampleRun(1, 1), nil))
	require.NoError(t, cat.Close())

	cat, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = cat.Close() }()

	latest, err := cat.LatestRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, latest.Documents)
}
