package index

import (
	"context"
	"fmt"
	"os"

	chromem "github.com/philippgille/chromem-go"

	"github.com/dshills/docquery-mcp/pkg/types"
)

// Handle is a read-only view of a persisted index. It is created by Open
// and never mutates the persistence directory.
type Handle struct {
	collection *chromem.Collection
}

// Open loads the persisted index from cfg.Dir.
//
// A missing or unreadable directory, or a directory without the expected
// collection, is types.ErrIndexNotBuilt: the caller must run ingest first.
func Open(cfg Config, embedder Embedder) (*Handle, error) {
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrIndexNotBuilt, cfg.Dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", types.ErrIndexNotBuilt, cfg.Dir)
	}

	db, err := chromem.NewPersistentDB(cfg.Dir, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %s: %v", types.ErrIndexNotBuilt, cfg.Dir, err)
	}

	embedFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}

	collection := db.GetCollection(cfg.Collection, embedFunc)
	if collection == nil {
		return nil, fmt.Errorf("%w: collection %s missing from %s", types.ErrIndexNotBuilt, cfg.Collection, cfg.Dir)
	}

	return &Handle{collection: collection}, nil
}

// Count returns the number of indexed chunks.
func (h *Handle) Count() int {
	return h.collection.Count()
}

// Retrieve returns the topK chunks most similar to the query.
func (h *Handle) Retrieve(ctx context.Context, query string, topK int) ([]types.RetrievedChunk, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	// chromem requires nResults <= document count.
	count := h.collection.Count()
	if count == 0 {
		return []types.RetrievedChunk{}, nil
	}
	if topK > count {
		topK = count
	}

	results, err := h.collection.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	retrieved := make([]types.RetrievedChunk, len(results))
	for i, r := range results {
		retrieved[i] = types.RetrievedChunk{
			ID:          i + 1,
			Path:        r.Metadata[types.MetadataFilePath],
			Similarity:  r.Similarity,
			HeadingPath: r.Metadata["heading_path"],
			Content:     r.Content,
		}
	}
	return retrieved, nil
}
