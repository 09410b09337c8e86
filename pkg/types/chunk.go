package types

import (
	"crypto/sha256"
	"errors"
)

// Chunk represents a heading-bounded markdown section prepared for
// embedding and retrieval.
type Chunk struct {
	// Identification
	DocumentID string // Source document identifier (absolute path)
	Ordinal    int    // Position of the chunk within its document (0-based)

	// Content
	Content     string
	ContentHash [32]byte // SHA-256 hash for deduplication
	TokenCount  int
	HeadingPath string // "Guide > Installation > Linux" style breadcrumb

	// Location
	StartLine int
	EndLine   int
}

// ValidateContent checks if the chunk content is valid.
func (c *Chunk) ValidateContent() error {
	if c.Content == "" {
		return errors.New("chunk content cannot be empty")
	}

	if c.StartLine <= 0 || c.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}

	if c.StartLine > c.EndLine {
		return errors.New("start line must be before or equal to end line")
	}

	return nil
}

// ComputeTokenCount estimates the number of tokens in the chunk.
// Uses a simple heuristic: characters / 4.
func (c *Chunk) ComputeTokenCount() int {
	totalChars := len(c.Content) + len(c.HeadingPath)
	c.TokenCount = totalChars / 4
	return c.TokenCount
}

// ComputeContentHash computes the SHA-256 hash of the chunk content.
func (c *Chunk) ComputeContentHash() {
	c.ContentHash = sha256.Sum256([]byte(c.Content))
}

// Validate performs comprehensive validation of the chunk.
func (c *Chunk) Validate() error {
	if err := c.ValidateContent(); err != nil {
		return err
	}

	if c.DocumentID == "" {
		return errors.New("document ID is required")
	}

	var zeroHash [32]byte
	if c.ContentHash == zeroHash {
		return errors.New("content hash must be computed")
	}

	return nil
}

// FullContent returns the chunk content prefixed with its heading path,
// which is the text actually embedded and handed to the model as context.
func (c *Chunk) FullContent() string {
	if c.HeadingPath == "" {
		return c.Content
	}
	return c.HeadingPath + "\n\n" + c.Content
}
