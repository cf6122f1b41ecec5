package domain

import (
	"fmt"
	"time"
)

// KnowledgeBase groups documents and their chunks for an organization.
// Aggregate stats are refreshed by the ingestion pipeline after each
// completed document; everything else is managed by external CRUD.
type KnowledgeBase struct {
	ID            string
	OrgID         string
	Name          string
	ChunkSize     int
	ChunkOverlap  int
	DocumentCount int
	ChunkCount    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const (
	// DefaultChunkSize is used when a knowledge base has no explicit setting.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is used when a knowledge base has no explicit setting.
	DefaultChunkOverlap = 200
)

// EffectiveChunkSize returns the configured chunk size or the default.
func (kb *KnowledgeBase) EffectiveChunkSize() int {
	if kb.ChunkSize > 0 {
		return kb.ChunkSize
	}
	return DefaultChunkSize
}

// EffectiveChunkOverlap returns the configured overlap, clamped below the
// chunk size so chunking always advances.
func (kb *KnowledgeBase) EffectiveChunkOverlap() int {
	overlap := kb.ChunkOverlap
	if overlap <= 0 {
		overlap = DefaultChunkOverlap
	}
	if size := kb.EffectiveChunkSize(); overlap >= size {
		overlap = size / 2
	}
	return overlap
}

// ValidateKnowledgeBase validates a KnowledgeBase instance
func ValidateKnowledgeBase(kb *KnowledgeBase) error {
	if kb == nil {
		return fmt.Errorf("knowledge base cannot be nil")
	}

	if kb.ID == "" {
		return fmt.Errorf("knowledge base ID is required")
	}

	if kb.Name == "" {
		return fmt.Errorf("knowledge base Name is required")
	}

	if kb.ChunkSize < 0 {
		return fmt.Errorf("knowledge base ChunkSize cannot be negative")
	}

	if kb.ChunkOverlap < 0 {
		return fmt.Errorf("knowledge base ChunkOverlap cannot be negative")
	}

	if kb.ChunkSize > 0 && kb.ChunkOverlap >= kb.ChunkSize {
		return fmt.Errorf("knowledge base ChunkOverlap must be smaller than ChunkSize")
	}

	return nil
}
