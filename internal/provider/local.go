package provider

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
	"strings"
)

const (
	ProviderLocal = "local"

	LocalDimension = 384
)

// LocalProvider is an offline stand-in: deterministic hash-based
// embeddings and a trivial extractive completion. It exists so the
// pipeline can run without a hosted credential (development, CI).
type LocalProvider struct {
	cache *Cache
}

// NewLocalProvider creates a new local provider.
func NewLocalProvider(cache *Cache) (*LocalProvider, error) {
	return &LocalProvider{cache: cache}, nil
}

// EmbedQuery returns a deterministic unit vector derived from the text hash.
func (l *LocalProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if l.cache != nil {
		if vec, ok := l.cache.Get(hash); ok {
			return vec, nil
		}
	}

	digest := sha256.Sum256([]byte(text))
	vector := make([]float32, LocalDimension)
	for i := 0; i < LocalDimension; i++ {
		vector[i] = float32(digest[i%len(digest)]) / 255.0
	}
	vector = NormalizeVector(vector)

	if l.cache != nil {
		l.cache.Set(hash, vector)
	}
	return vector, nil
}

// EmbedDocuments embeds each text sequentially.
func (l *LocalProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateTexts(texts); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := l.EmbedQuery(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Complete returns the first lines of the prompt's context section.
// Good enough to exercise the pipeline offline; not a real model.
func (l *LocalProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyText
	}
	lines := strings.Split(prompt, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	return "[local] " + strings.TrimSpace(strings.Join(lines, " ")), nil
}

// Dimension returns the embedding dimension.
func (l *LocalProvider) Dimension() int {
	return LocalDimension
}

// Name returns the provider name.
func (l *LocalProvider) Name() string {
	return ProviderLocal
}

// Close is a no-op.
func (l *LocalProvider) Close() error {
	return nil
}

// NormalizeVector normalizes a vector to unit length (for cosine similarity).
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val * val)
	}

	if sum == 0 {
		return v
	}

	norm := float32(math.Sqrt(sum))
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / norm
	}

	return result
}
