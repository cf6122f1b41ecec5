package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/botweaver/knowledge/internal/domain"
)

const (
	// DefaultClaimBatchSize is how many pending documents one poll claims.
	DefaultClaimBatchSize = 10
)

// PendingDocumentRepository claims pending documents for processing.
type PendingDocumentRepository interface {
	// ClaimPending atomically claims up to limit pending documents so
	// concurrent workers never pick up the same document twice.
	ClaimPending(ctx context.Context, limit int) ([]*domain.Document, error)
}

// DocumentIngester runs the ingestion pipeline for one document.
type DocumentIngester interface {
	ProcessDocument(ctx context.Context, documentID string) error
}

// DocumentWorker drains the pending document queue. Per-document failures
// are already recorded on the document row by the ingester, so the worker
// only logs them and moves on.
type DocumentWorker struct {
	repo      PendingDocumentRepository
	ingester  DocumentIngester
	batchSize int
}

// NewDocumentWorker creates a new DocumentWorker instance
func NewDocumentWorker(repo PendingDocumentRepository, ingester DocumentIngester) *DocumentWorker {
	return &DocumentWorker{
		repo:      repo,
		ingester:  ingester,
		batchSize: DefaultClaimBatchSize,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *DocumentWorker) ProcessJobs(ctx context.Context) error {
	docs, err := w.repo.ClaimPending(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to claim pending documents: %w", err)
	}

	if len(docs) == 0 {
		return nil
	}

	log.Printf("Processing %d pending documents", len(docs))

	for _, doc := range docs {
		if err := w.ingester.ProcessDocument(ctx, doc.ID); err != nil {
			log.Printf("Error processing document %s: %v", doc.ID, err)
		}
	}

	return nil
}
