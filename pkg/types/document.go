package types

import "errors"

// MetadataFilePath is the metadata key holding the originating file path.
const MetadataFilePath = "file_path"

// Document represents a single discovered documentation file.
// Documents are immutable once created and live only for the duration
// of an ingestion run; they are never persisted independently of the index.
type Document struct {
	// ID is the stable identifier: the resolved absolute source path.
	ID string

	// Text is the full UTF-8 file content.
	Text string

	// Metadata carries at minimum the originating file path.
	Metadata map[string]string
}

// NewDocument creates a Document for a file path and its content.
func NewDocument(path, text string) Document {
	return Document{
		ID:   path,
		Text: text,
		Metadata: map[string]string{
			MetadataFilePath: path,
		},
	}
}

// FilePath returns the originating file path from metadata.
func (d Document) FilePath() string {
	return d.Metadata[MetadataFilePath]
}

// Validate checks if the document is well-formed.
func (d Document) Validate() error {
	if d.ID == "" {
		return errors.New("document ID cannot be empty")
	}
	if d.Text == "" {
		return errors.New("document text cannot be empty")
	}
	if d.Metadata[MetadataFilePath] == "" {
		return errors.New("document metadata must include file path")
	}
	return nil
}
