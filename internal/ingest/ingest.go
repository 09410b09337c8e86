package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/docquery-mcp/internal/catalog"
	"github.com/dshills/docquery-mcp/internal/config"
	"github.com/dshills/docquery-mcp/internal/index"
	"github.com/dshills/docquery-mcp/internal/loader"
	"github.com/dshills/docquery-mcp/internal/provider"
	"github.com/dshills/docquery-mcp/pkg/types"
)

// Result summarizes one completed ingestion run.
type Result struct {
	RunID     int64
	Documents int
	Chunks    int
	Duration  time.Duration
}

// documentLoader is the slice of the loader the pipeline needs.
type documentLoader interface {
	Load(ctx context.Context, roots []string) ([]types.Document, error)
}

// indexBuilder is the slice of the index builder the pipeline needs.
type indexBuilder interface {
	Build(ctx context.Context, docs []types.Document) (*index.BuildResult, error)
}

// Pipeline runs the full ingestion flow: load documents, build and
// persist the vector index, record the run in the catalog.
type Pipeline struct {
	cfg      *config.Config
	provider provider.Provider
	loader   documentLoader
	builder  indexBuilder
	logger   *zap.Logger
}

// New assembles a Pipeline. The provider is constructed here, before any
// document is read, so credential problems (a missing API key) fail the
// run without touching the filesystem.
func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.ValidateForIngest(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	prov, err := provider.New(provider.Config{
		Name:       cfg.Provider.Name,
		APIKey:     cfg.Provider.APIKey,
		BaseURL:    cfg.Provider.BaseURL,
		EmbedModel: cfg.Provider.EmbedModel,
		ChatModel:  cfg.Provider.ChatModel,
		Timeout:    cfg.Provider.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring provider: %w", err)
	}

	return &Pipeline{
		cfg:      cfg,
		provider: prov,
		loader: loader.New(loader.Config{
			Extensions:   cfg.Loader.Extensions,
			ExcludedDirs: cfg.Loader.ExcludedDirs,
		}, logger),
		builder: index.NewBuilder(index.Config{
			Dir:        cfg.IndexDir(),
			Collection: cfg.Storage.Collection,
			Compress:   cfg.Storage.Compress,
		}, prov, logger),
		logger: logger,
	}, nil
}

// Close releases the pipeline's provider.
func (p *Pipeline) Close() error {
	return p.provider.Close()
}

// Run executes the pipeline. Errors name the stage that failed so a
// non-interactive caller can tell discovery problems from provider or
// persistence problems.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	docs, err := p.loader.Load(ctx, p.cfg.Roots)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("loading documents: no content files found under %v", p.cfg.Roots)
	}

	built, err := p.builder.Build(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}

	completed := time.Now()
	result := &Result{
		Documents: built.Documents,
		Chunks:    built.Chunks,
		Duration:  completed.Sub(started),
	}

	runID, err := p.recordRun(ctx, docs, built, started, completed)
	if err != nil {
		// The index is already persisted and queryable; a catalog
		// failure degrades status reporting, not retrieval.
		p.logger.Warn("recording ingestion run failed", zap.Error(err))
		return result, nil
	}
	result.RunID = runID

	p.logger.Info("ingestion complete",
		zap.Int("documents", result.Documents),
		zap.Int("chunks", result.Chunks),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// recordRun writes the run and its documents to the catalog.
func (p *Pipeline) recordRun(ctx context.Context, docs []types.Document, built *index.BuildResult, started, completed time.Time) (int64, error) {
	cat, err := catalog.Open(p.cfg.CatalogPath())
	if err != nil {
		return 0, err
	}
	defer func() { _ = cat.Close() }()

	run := &catalog.Run{
		StartedAt:   started,
		CompletedAt: completed,
		Documents:   built.Documents,
		Chunks:      built.Chunks,
		Duration:    completed.Sub(started),
	}

	records := make([]catalog.DocumentRecord, len(docs))
	for i, doc := range docs {
		records[i] = catalog.DocumentRecord{
			Path:        doc.ID,
			ContentHash: sha256.Sum256([]byte(doc.Text)),
			SizeBytes:   int64(len(doc.Text)),
			Chunks:      built.ChunksByDoc[doc.ID],
		}
	}

	if err := cat.RecordRun(ctx, run, records); err != nil {
		return 0, err
	}
	return run.ID, nil
}
