package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docquery-mcp/internal/catalog"
	"github.com/dshills/docquery-mcp/internal/config"
	"github.com/dshills/docquery-mcp/internal/index"
	"github.com/dshills/docquery-mcp/pkg/types"
)

func writeDoc(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func sectionBody(title string) string {
	return "# " + title + "\n" + strings.Repeat(title+" details and usage notes ", 15)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	docsDir := t.TempDir()
	writeDoc(t, docsDir, "guide.md", sectionBody("Guide"))
	writeDoc(t, docsDir, "reference.md", sectionBody("Reference"))

	cfg := config.Default()
	cfg.Roots = []string{docsDir}
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "storage")
	cfg.Provider.Name = "local"
	return cfg
}

func TestMissingAPIKeyFailsBeforeLoading(t *testing.T) {
	cfg := testConfig(t)
	cfg.Provider.Name = "openai"
	cfg.Provider.APIKey = ""

	_, err := New(cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingAPIKey)

	// The run never got far enough to create storage.
	_, statErr := os.Stat(cfg.Storage.Dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunIngestsAndRecords(t *testing.T) {
	cfg := testConfig(t)

	pipeline, err := New(cfg, nil)
	require.NoError(t, err)
	defer func() { _ = pipeline.Close() }()

	result, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Documents)
	assert.GreaterOrEqual(t, result.Chunks, 2)
	assert.NotZero(t, result.RunID)

	// The persisted index is openable and complete.
	handle, err := index.Open(index.Config{
		Dir:        cfg.IndexDir(),
		Collection: cfg.Storage.Collection,
	}, pipeline.provider)
	require.NoError(t, err)
	assert.Equal(t, result.Chunks, handle.Count())

	// The catalog recorded the run with per-document detail.
	cat, err := catalog.Open(cfg.CatalogPath())
	require.NoError(t, err)
	defer func() { _ = cat.Close() }()

	run, err := cat.LatestRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.RunID, run.ID)
	assert.Equal(t, 2, run.Documents)

	docs, err := cat.ListDocuments(context.Background(), run.ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, doc := range docs {
		assert.Positive(t, doc.Chunks)
		assert.Positive(t, doc.SizeBytes)
	}
}

func TestRunTwiceReplacesIndex(t *testing.T) {
	cfg := testConfig(t)

	pipeline, err := New(cfg, nil)
	require.NoError(t, err)
	defer func() { _ = pipeline.Close() }()

	first, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	second, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Chunks, second.Chunks)

	handle, err := index.Open(index.Config{
		Dir:        cfg.IndexDir(),
		Collection: cfg.Storage.Collection,
	}, pipeline.provider)
	require.NoError(t, err)
	assert.Equal(t, second.Chunks, handle.Count())

	cat, err := catalog.Open(cfg.CatalogPath())
	require.NoError(t, err)
	defer func() { _ = cat.Close() }()

	status, err := cat.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
}

func TestRunEmptyCorpus(t *testing.T) {
	cfg := testConfig(t)
	cfg.Roots = []string{t.TempDir()} // no markdown files

	pipeline, err := New(cfg, nil)
	require.NoError(t, err)
	defer func() { _ = pipeline.Close() }()

	_, err = pipeline.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading documents")
}

type failingBuilder struct{}

func (f *failingBuilder) Build(ctx context.Context, docs []types.Document) (*index.BuildResult, error) {
	return nil, errors.New("embedder unavailable")
}

func TestRunNamesFailingStage(t *testing.T) {
	cfg := testConfig(t)

	pipeline, err := New(cfg, nil)
	require.NoError(t, err)
	defer func() { _ = pipeline.Close() }()

	pipeline.builder = &failingBuilder{}
	_, err = pipeline.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "building index")
}

func TestRunMissingRoot(t *testing.T) {
	cfg := testConfig(t)
	cfg.Roots = []string{filepath.Join(t.TempDir(), "missing")}

	pipeline, err := New(cfg, nil)
	require.NoError(t, err)
	defer func() { _ = pipeline.Close() }()

	_, err = pipeline.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrRootNotFound)
}
