package index

import (
	"context"
	"fmt"
	"os"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/dshills/docquery-mcp/internal/chunker"
	"github.com/dshills/docquery-mcp/pkg/types"
)

// embedBatchSize bounds a single batch handed to the embedder.
const embedBatchSize = 64

// Embedder is the slice of the provider the index needs.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Config locates the persisted index.
type Config struct {
	// Dir is the persistence directory. Written only by the builder,
	// read only by Open.
	Dir string

	// Collection is the chromem collection name.
	Collection string

	// Compress enables gzip compression of the persisted files.
	Compress bool
}

// BuildResult reports what a build produced.
type BuildResult struct {
	Documents int
	Chunks    int

	// ChunksByDoc maps document ID to its chunk count.
	ChunksByDoc map[string]int
}

// Builder constructs a persisted vector index from documents.
type Builder struct {
	cfg      Config
	embedder Embedder
	chunker  *chunker.Chunker
	logger   *zap.Logger
}

// NewBuilder creates a Builder. A nil logger falls back to a no-op logger.
func NewBuilder(cfg Config, embedder Embedder, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		cfg:      cfg,
		embedder: embedder,
		chunker:  chunker.New(),
		logger:   logger,
	}
}

// Build chunks the documents, embeds every chunk, and persists a fresh
// index at cfg.Dir, fully replacing any prior index there.
//
// The index is written to a temporary sibling directory first and swapped
// into place only after the whole build succeeds, so a failed build never
// leaves a half-written index where Open would find it.
func (b *Builder) Build(ctx context.Context, docs []types.Document) (*BuildResult, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents to index")
	}

	var chunks []*types.Chunk
	chunksByDoc := make(map[string]int, len(docs))
	for _, doc := range docs {
		docChunks := b.chunker.ChunkDocument(doc)
		chunksByDoc[doc.ID] = len(docChunks)
		chunks = append(chunks, docChunks...)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("documents produced no chunks")
	}

	b.logger.Info("building index",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)),
	)

	embeddings, err := b.embedChunks(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}

	tmpDir := b.cfg.Dir + ".tmp-" + strconv.Itoa(os.Getpid())
	if err := os.RemoveAll(tmpDir); err != nil {
		return nil, fmt.Errorf("clearing build directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	if err := b.writeIndex(ctx, tmpDir, chunks, embeddings); err != nil {
		return nil, err
	}

	if err := swapDirs(tmpDir, b.cfg.Dir); err != nil {
		return nil, fmt.Errorf("persisting index: %w", err)
	}

	b.logger.Info("index persisted", zap.String("dir", b.cfg.Dir))

	return &BuildResult{
		Documents:   len(docs),
		Chunks:      len(chunks),
		ChunksByDoc: chunksByDoc,
	}, nil
}

// embedChunks embeds chunk contents in bounded batches.
func (b *Builder) embedChunks(ctx context.Context, chunks []*types.Chunk) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.FullContent())
		}

		vectors, err := b.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
		}
		embeddings = append(embeddings, vectors...)
	}
	return embeddings, nil
}

// writeIndex fills a fresh chromem DB at dir with the embedded chunks.
func (b *Builder) writeIndex(ctx context.Context, dir string, chunks []*types.Chunk, embeddings [][]float32) error {
	db, err := chromem.NewPersistentDB(dir, b.cfg.Compress)
	if err != nil {
		return fmt.Errorf("creating index store: %w", err)
	}

	collection, err := db.GetOrCreateCollection(b.cfg.Collection, nil, b.queryEmbeddingFunc())
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", b.cfg.Collection, err)
	}

	chromemDocs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		chromemDocs[i] = chromem.Document{
			ID:        fmt.Sprintf("%s#%d", chunk.DocumentID, chunk.Ordinal),
			Content:   chunk.Content,
			Embedding: embeddings[i],
			Metadata: map[string]string{
				types.MetadataFilePath: chunk.DocumentID,
				"heading_path":         chunk.HeadingPath,
				"start_line":           strconv.Itoa(chunk.StartLine),
			},
		}
	}

	// Embeddings are precomputed, so no added concurrency here.
	if err := collection.AddDocuments(ctx, chromemDocs, 1); err != nil {
		return fmt.Errorf("adding documents to index: %w", err)
	}

	return nil
}

// queryEmbeddingFunc adapts the embedder for chromem query-time use.
func (b *Builder) queryEmbeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return b.embedder.EmbedQuery(ctx, text)
	}
}

// swapDirs atomically replaces dst with src. The previous dst is kept
// aside as dst.old until the rename succeeds, then removed.
func swapDirs(src, dst string) error {
	oldDir := dst + ".old"
	if err := os.RemoveAll(oldDir); err != nil {
		return err
	}

	replaced := false
	if _, err := os.Stat(dst); err == nil {
		if err := os.Rename(dst, oldDir); err != nil {
			return err
		}
		replaced = true
	}

	if err := os.Rename(src, dst); err != nil {
		// Put the old index back rather than leaving nothing.
		if replaced {
			_ = os.Rename(oldDir, dst)
		}
		return err
	}

	if replaced {
		return os.RemoveAll(oldDir)
	}
	return nil
}
