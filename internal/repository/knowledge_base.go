package repository

import (
	"context"
	"errors"
	"time"

	"github.com/botweaver/knowledge/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const knowledgeBaseColumns = `id, org_id, name, chunk_size, chunk_overlap, document_count, chunk_count, created_at, updated_at`

type KnowledgeBaseRepository struct {
	db dbtx
}

func NewKnowledgeBaseRepository(pool *pgxpool.Pool) *KnowledgeBaseRepository {
	return &KnowledgeBaseRepository{db: pool}
}

func NewKnowledgeBaseRepositoryWithTx(tx pgx.Tx) *KnowledgeBaseRepository {
	return &KnowledgeBaseRepository{db: tx}
}

func (r *KnowledgeBaseRepository) Create(ctx context.Context, kb *domain.KnowledgeBase) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO knowledge_bases (id, org_id, name, chunk_size, chunk_overlap, document_count, chunk_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		kb.ID, kb.OrgID, kb.Name, kb.ChunkSize, kb.ChunkOverlap, kb.DocumentCount, kb.ChunkCount, kb.CreatedAt, kb.UpdatedAt,
	)
	return err
}

func (r *KnowledgeBaseRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeBase, error) {
	var kb domain.KnowledgeBase
	err := r.db.QueryRow(ctx,
		`SELECT `+knowledgeBaseColumns+` FROM knowledge_bases WHERE id = $1`,
		id,
	).Scan(&kb.ID, &kb.OrgID, &kb.Name, &kb.ChunkSize, &kb.ChunkOverlap,
		&kb.DocumentCount, &kb.ChunkCount, &kb.CreatedAt, &kb.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrKnowledgeBaseNotFound
		}
		return nil, err
	}
	return &kb, nil
}

// RefreshStats recomputes and persists the knowledge base's aggregate
// document and chunk counts. Called once per completed ingestion.
func (r *KnowledgeBaseRepository) RefreshStats(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_bases SET
			document_count = (SELECT COUNT(*) FROM documents WHERE knowledge_base_id = $1),
			chunk_count = (SELECT COUNT(*) FROM chunks WHERE knowledge_base_id = $1),
			updated_at = $2
		 WHERE id = $1`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrKnowledgeBaseNotFound
	}
	return nil
}
