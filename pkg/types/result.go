package types

import "errors"

// RetrievedChunk is a single retrieval hit: a chunk of documentation text
// with its source and similarity score.
type RetrievedChunk struct {
	// Identification
	ID   int // Position in the retrieved set (1-based)
	Path string

	// Scoring
	Similarity float32 // Cosine similarity in [0, 1]

	// Content
	HeadingPath string
	Content     string
}

// Validate checks if the retrieved chunk is valid.
func (r *RetrievedChunk) Validate() error {
	if r.ID < 1 {
		return errors.New("rank must be >= 1")
	}
	if r.Path == "" {
		return errors.New("source path is required")
	}
	if r.Content == "" {
		return errors.New("content cannot be empty")
	}
	if r.Similarity < 0 || r.Similarity > 1 {
		return errors.New("similarity must be between 0 and 1")
	}
	return nil
}

// Answer is the result of a query: generated text plus the source paths
// of the chunks the model was shown.
type Answer struct {
	Text    string
	Sources []string
}
