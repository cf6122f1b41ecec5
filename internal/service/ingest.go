package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/botweaver/knowledge/internal/chunk"
	"github.com/botweaver/knowledge/internal/domain"
	"github.com/botweaver/knowledge/internal/telemetry"
	"github.com/google/uuid"
)

// TextExtractor converts a document into normalized plain text.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// BatchEmbedder vectorizes chunk contents, preserving input order.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// IngestDocumentRepository defines the document persistence the pipeline needs.
type IngestDocumentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id, contentHash string, chunkCount int) error
	MarkFailed(ctx context.Context, id, errMsg string) error
}

// IngestKnowledgeBaseRepository defines the knowledge base persistence the
// pipeline needs.
type IngestKnowledgeBaseRepository interface {
	GetByID(ctx context.Context, id string) (*domain.KnowledgeBase, error)
	RefreshStats(ctx context.Context, id string) error
}

// IngestChunkRepository defines chunk persistence for ingestion.
type IngestChunkRepository interface {
	StoreChunk(ctx context.Context, c *domain.Chunk) error
	DeleteByDocument(ctx context.Context, documentID string) (int64, error)
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// IngestService runs the extract, chunk, embed, store pipeline for one
// document at a time. Documents are independent units of work; callers may
// process several concurrently.
type IngestService struct {
	docs      IngestDocumentRepository
	kbs       IngestKnowledgeBaseRepository
	chunks    IngestChunkRepository
	extractor TextExtractor
	embedder  BatchEmbedder
	uuidGen   UUIDGenerator
}

// NewIngestService creates a new IngestService instance
func NewIngestService(
	docs IngestDocumentRepository,
	kbs IngestKnowledgeBaseRepository,
	chunks IngestChunkRepository,
	extractor TextExtractor,
	embedder BatchEmbedder,
) *IngestService {
	return &IngestService{
		docs:      docs,
		kbs:       kbs,
		chunks:    chunks,
		extractor: extractor,
		embedder:  embedder,
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

// NewIngestServiceWithUUIDGen creates an IngestService with a custom UUID
// generator (for testing)
func NewIngestServiceWithUUIDGen(
	docs IngestDocumentRepository,
	kbs IngestKnowledgeBaseRepository,
	chunks IngestChunkRepository,
	extractor TextExtractor,
	embedder BatchEmbedder,
	uuidGen UUIDGenerator,
) *IngestService {
	s := NewIngestService(docs, kbs, chunks, extractor, embedder)
	s.uuidGen = uuidGen
	return s
}

// ProcessDocument ingests one document: extract text, split into chunks,
// embed, and replace any previously stored chunks. The document moves to
// processing at the start and to completed or failed at the end; failures
// are recorded on the document and returned to the caller.
func (s *IngestService) ProcessDocument(ctx context.Context, documentID string) error {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.ProcessDocument", telemetry.SpanAttributes{
		DocumentID: documentID,
		Operation:  "ingest",
	})
	defer span.End()

	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	if err := s.docs.MarkProcessing(ctx, doc.ID); err != nil {
		return err
	}

	hash, chunkCount, err := s.runPipeline(ctx, doc)
	if err != nil {
		span.SetError(err)
		if markErr := s.docs.MarkFailed(ctx, doc.ID, err.Error()); markErr != nil {
			log.Printf("failed to mark document %s failed: %v", doc.ID, markErr)
		}
		return err
	}

	if err := s.docs.MarkCompleted(ctx, doc.ID, hash, chunkCount); err != nil {
		return err
	}

	if err := s.kbs.RefreshStats(ctx, doc.KnowledgeBaseID); err != nil {
		log.Printf("failed to refresh stats for knowledge base %s: %v", doc.KnowledgeBaseID, err)
	}

	log.Printf("document %s ingested: %d chunks", doc.ID, chunkCount)
	return nil
}

func (s *IngestService) runPipeline(ctx context.Context, doc *domain.Document) (string, int, error) {
	kb, err := s.kbs.GetByID(ctx, doc.KnowledgeBaseID)
	if err != nil {
		return "", 0, err
	}

	text, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		return "", 0, fmt.Errorf("extraction failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", 0, domain.ErrEmptyContent
	}

	digest := sha256.Sum256([]byte(text))
	contentHash := hex.EncodeToString(digest[:])

	pieces := chunk.Split(text, kb.EffectiveChunkSize(), kb.EffectiveChunkOverlap())
	if len(pieces) == 0 {
		return "", 0, domain.ErrNoChunksGenerated
	}

	contents := make([]string, len(pieces))
	for i, p := range pieces {
		contents[i] = p.Content
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, contents)
	if err != nil {
		return "", 0, domain.NewEmbeddingFailed(err)
	}
	if len(embeddings) != len(pieces) {
		return "", 0, domain.NewEmbeddingFailed(
			fmt.Errorf("expected %d embeddings, got %d", len(pieces), len(embeddings)))
	}

	// Reprocessing replaces chunks wholesale; readers may transiently see
	// zero or partial chunks since there is no transaction boundary here.
	if _, err := s.chunks.DeleteByDocument(ctx, doc.ID); err != nil {
		return "", 0, err
	}

	now := time.Now().UTC()
	for i, p := range pieces {
		c := &domain.Chunk{
			ID:              s.uuidGen.NewString(),
			DocumentID:      doc.ID,
			KnowledgeBaseID: doc.KnowledgeBaseID,
			Content:         p.Content,
			Embedding:       embeddings[i],
			ChunkIndex:      i,
			StartChar:       p.StartChar,
			EndChar:         p.EndChar,
			Metadata: domain.ChunkMetadata{
				DocumentName: doc.Name,
				DocumentType: string(doc.Type),
			},
			CreatedAt: now,
		}
		if err := s.chunks.StoreChunk(ctx, c); err != nil {
			return "", 0, err
		}
	}

	return contentHash, len(pieces), nil
}

// DocumentResult reports the outcome of one document in a batch.
type DocumentResult struct {
	DocumentID string
	Err        error
}

// ProcessDocuments ingests a batch of documents, returning one result per
// id. A failing document never aborts the rest of the batch; callers
// inspect document status and the per-id results for reporting.
func (s *IngestService) ProcessDocuments(ctx context.Context, documentIDs []string) []DocumentResult {
	results := make([]DocumentResult, 0, len(documentIDs))
	for _, id := range documentIDs {
		err := s.ProcessDocument(ctx, id)
		if err != nil {
			log.Printf("document %s failed: %v", id, err)
		}
		results = append(results, DocumentResult{DocumentID: id, Err: err})
	}
	return results
}
