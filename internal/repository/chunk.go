package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/botweaver/knowledge/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository persists embedded chunks and implements both vector and
// exact-match search across knowledge bases.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// StoreChunk persists one chunk row with its embedding and metadata.
func (r *ChunkRepository) StoreChunk(ctx context.Context, c *domain.Chunk) error {
	metadata, err := json.Marshal(c.Metadata)
	if err != nil {
		return err
	}

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO chunks
			(id, document_id, knowledge_base_id, content, embedding, chunk_index, start_char, end_char, metadata, created_at)
		 VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.DocumentID, c.KnowledgeBaseID, c.Content,
		pgvector.NewVector(c.Embedding), c.ChunkIndex, c.StartChar, c.EndChar,
		metadata, createdAt,
	)
	return err
}

// DeleteByDocument removes all chunks for a document and reports how many
// were removed. Called before every reprocess.
func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID string) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

// SearchByEmbedding returns chunks across the given knowledge bases ranked
// by cosine similarity to the query embedding, descending, excluding results
// below threshold and truncated to limit.
func (r *ChunkRepository) SearchByEmbedding(ctx context.Context, kbIDs []string, embedding []float32, limit int, threshold float64) ([]*domain.SearchResult, error) {
	if len(kbIDs) == 0 {
		return []*domain.SearchResult{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	vec := pgvector.NewVector(embedding)

	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.content, d.name, kb.name, c.knowledge_base_id, c.chunk_index,
		        1 - (c.embedding <=> $1) AS similarity
		 FROM chunks c
		 JOIN documents d ON d.id = c.document_id
		 JOIN knowledge_bases kb ON kb.id = c.knowledge_base_id
		 WHERE c.knowledge_base_id = ANY($2)
		   AND 1 - (c.embedding <=> $1) >= $3
		 ORDER BY c.embedding <=> $1
		 LIMIT $4`,
		vec, kbIDs, threshold, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSearchResults(rows)
}

// SearchByContent runs a case-insensitive substring search over chunk
// content, used for exact identifier lookups. Any of the patterns matching
// qualifies a chunk; results carry similarity 1 since they are exact hits.
func (r *ChunkRepository) SearchByContent(ctx context.Context, kbIDs []string, patterns []string, limit int) ([]*domain.SearchResult, error) {
	if len(kbIDs) == 0 || len(patterns) == 0 {
		return []*domain.SearchResult{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.content, d.name, kb.name, c.knowledge_base_id, c.chunk_index,
		        1.0 AS similarity
		 FROM chunks c
		 JOIN documents d ON d.id = c.document_id
		 JOIN knowledge_bases kb ON kb.id = c.knowledge_base_id
		 WHERE c.knowledge_base_id = ANY($1)
		   AND c.content ILIKE ANY($2)
		 ORDER BY c.chunk_index
		 LIMIT $3`,
		kbIDs, patterns, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSearchResults(rows)
}

func scanSearchResults(rows pgx.Rows) ([]*domain.SearchResult, error) {
	results := make([]*domain.SearchResult, 0)
	for rows.Next() {
		var sr domain.SearchResult
		if err := rows.Scan(&sr.ChunkID, &sr.Content, &sr.DocumentName, &sr.KnowledgeBaseName,
			&sr.KnowledgeBaseID, &sr.ChunkIndex, &sr.Similarity); err != nil {
			return nil, err
		}
		results = append(results, &sr)
	}
	return results, rows.Err()
}
