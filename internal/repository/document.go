package repository

import (
	"context"
	"errors"
	"time"

	"github.com/botweaver/knowledge/internal/domain"
	"github.com/botweaver/knowledge/internal/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentColumns = `id, knowledge_base_id, type, name, file_path, source_url, status, content_hash, chunk_count, error, created_at, updated_at`

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, knowledge_base_id, type, name, file_path, source_url, status, content_hash, chunk_count, error, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		d.ID, d.KnowledgeBaseID, d.Type, d.Name, nullableString(d.FilePath), nullableString(d.SourceURL),
		d.Status, nullableString(d.ContentHash), d.ChunkCount, d.Error, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`,
		id,
	)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

// MarkProcessing transitions a document into the processing state at the
// start of ingestion.
func (r *DocumentRepository) MarkProcessing(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET status = $1, error = '', updated_at = $2 WHERE id = $3`,
		domain.DocumentStatusProcessing, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// MarkCompleted records a successful ingestion together with the content
// hash of the extracted text and the number of chunks written.
func (r *DocumentRepository) MarkCompleted(ctx context.Context, id, contentHash string, chunkCount int) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET status = $1, content_hash = $2, chunk_count = $3, error = '', updated_at = $4 WHERE id = $5`,
		domain.DocumentStatusCompleted, contentHash, chunkCount, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// MarkFailed records the triggering error and moves the document to failed.
func (r *DocumentRepository) MarkFailed(ctx context.Context, id, errMsg string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		domain.DocumentStatusFailed, errMsg, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// ClaimPending atomically claims up to limit pending documents for the
// ingestion worker, moving them to processing so concurrent workers do not
// pick up the same document twice.
func (r *DocumentRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx,
		`UPDATE documents SET status = $1, updated_at = $2
		 WHERE id IN (
			SELECT id FROM documents WHERE status = $3
			ORDER BY created_at ASC
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING `+documentColumns,
		domain.DocumentStatusProcessing, time.Now().UTC(), domain.DocumentStatusPending, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDocumentRows(rows)
}

func (r *DocumentRepository) ListByKnowledgeBase(ctx context.Context, kbID string, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.Document], error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+documentColumns+`
			 FROM documents
			 WHERE knowledge_base_id = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			kbID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+documentColumns+`
			 FROM documents
			 WHERE knowledge_base_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			kbID, limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanDocumentRows(rows)
	if err != nil {
		return nil, err
	}

	result := &pagination.PageResult[*domain.Document]{Items: items}
	if len(items) > limit {
		result.Items = items[:limit]
		result.HasMore = true
		last := result.Items[limit-1]
		result.Cursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}
	return result, nil
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var d domain.Document
	var filePath, sourceURL, contentHash *string
	err := row.Scan(&d.ID, &d.KnowledgeBaseID, &d.Type, &d.Name, &filePath, &sourceURL,
		&d.Status, &contentHash, &d.ChunkCount, &d.Error, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if filePath != nil {
		d.FilePath = *filePath
	}
	if sourceURL != nil {
		d.SourceURL = *sourceURL
	}
	if contentHash != nil {
		d.ContentHash = *contentHash
	}
	return &d, nil
}

func scanDocumentRows(rows pgx.Rows) ([]*domain.Document, error) {
	var results []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, doc)
	}
	return results, rows.Err()
}
