package domain

import "time"

// ChunkMetadata carries descriptive fields persisted alongside a chunk.
type ChunkMetadata struct {
	DocumentName string `json:"document_name"`
	DocumentType string `json:"document_type"`
}

// Chunk is an immutable, embedded slice of a document's extracted text.
// Reprocessing a document replaces its chunks rather than editing them.
type Chunk struct {
	ID              string
	DocumentID      string
	KnowledgeBaseID string
	Content         string
	Embedding       []float32
	ChunkIndex      int
	StartChar       int
	EndChar         int
	Metadata        ChunkMetadata
	CreatedAt       time.Time
}
