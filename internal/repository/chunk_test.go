//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/botweaver/knowledge/internal/domain"
	"github.com/botweaver/knowledge/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testVector builds a 1536-dimension unit vector pointing along one axis,
// so distinct seeds are orthogonal under cosine similarity.
func testVector(axis int) []float32 {
	vec := make([]float32, 1536)
	vec[axis%1536] = 1
	return vec
}

func storeTestChunk(ctx context.Context, t *testing.T, repo *ChunkRepository, docID, kbID, content string, index, axis int) *domain.Chunk {
	c := &domain.Chunk{
		ID:              uuid.NewString(),
		DocumentID:      docID,
		KnowledgeBaseID: kbID,
		Content:         content,
		Embedding:       testVector(axis),
		ChunkIndex:      index,
		StartChar:       0,
		EndChar:         len(content),
		Metadata:        domain.ChunkMetadata{DocumentName: "notes.txt", DocumentType: "txt"},
		CreatedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.StoreChunk(ctx, c))
	return c
}

func TestChunkRepository_SearchByEmbedding(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	kbRepo := NewKnowledgeBaseRepository(pool)
	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	kb := createTestKnowledgeBase(ctx, t, kbRepo)
	doc := newTestDocument(kb.ID)
	require.NoError(t, docRepo.Create(ctx, doc))

	storeTestChunk(ctx, t, chunkRepo, doc.ID, kb.ID, "refund policy details", 0, 1)
	storeTestChunk(ctx, t, chunkRepo, doc.ID, kb.ID, "shipping rates by region", 1, 2)

	// Query along axis 1 hits the first chunk exactly and is orthogonal to
	// the second.
	results, err := chunkRepo.SearchByEmbedding(ctx, []string{kb.ID}, testVector(1), 10, 0.7)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "refund policy details", results[0].Content)
	assert.Equal(t, "notes.txt", results[0].DocumentName)
	assert.Equal(t, kb.Name, results[0].KnowledgeBaseName)
	assert.InDelta(t, 1.0, results[0].Similarity, 0.001)

	// Threshold zero returns both, ranked by similarity.
	results, err = chunkRepo.SearchByEmbedding(ctx, []string{kb.ID}, testVector(1), 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "refund policy details", results[0].Content)

	// Unlinked knowledge bases never match.
	results, err = chunkRepo.SearchByEmbedding(ctx, []string{"other-kb"}, testVector(1), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = chunkRepo.SearchByEmbedding(ctx, nil, testVector(1), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChunkRepository_SearchByContent(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	kbRepo := NewKnowledgeBaseRepository(pool)
	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	kb := createTestKnowledgeBase(ctx, t, kbRepo)
	doc := newTestDocument(kb.ID)
	require.NoError(t, docRepo.Create(ctx, doc))

	storeTestChunk(ctx, t, chunkRepo, doc.ID, kb.ID,
		"ROW: [Barcode: 8698686923236] [Name: Ceramic Mug]", 0, 1)
	storeTestChunk(ctx, t, chunkRepo, doc.ID, kb.ID,
		"ROW: [Barcode: 8690000000000] [Name: Steel Pan]", 1, 2)

	results, err := chunkRepo.SearchByContent(ctx, []string{kb.ID}, []string{"%8698686923236%"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Content, "Ceramic Mug")
	assert.Equal(t, 1.0, results[0].Similarity)

	// Any matching pattern qualifies a chunk.
	results, err = chunkRepo.SearchByContent(ctx, []string{kb.ID}, []string{"%no-such%", "%steel pan%"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Content, "Steel Pan")

	results, err = chunkRepo.SearchByContent(ctx, []string{kb.ID}, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChunkRepository_DeleteByDocument(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	kbRepo := NewKnowledgeBaseRepository(pool)
	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	kb := createTestKnowledgeBase(ctx, t, kbRepo)
	doc := newTestDocument(kb.ID)
	require.NoError(t, docRepo.Create(ctx, doc))
	other := newTestDocument(kb.ID)
	require.NoError(t, docRepo.Create(ctx, other))

	storeTestChunk(ctx, t, chunkRepo, doc.ID, kb.ID, "first", 0, 1)
	storeTestChunk(ctx, t, chunkRepo, doc.ID, kb.ID, "second", 1, 2)
	storeTestChunk(ctx, t, chunkRepo, other.ID, kb.ID, "kept", 0, 3)

	deleted, err := chunkRepo.DeleteByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	results, err := chunkRepo.SearchByContent(ctx, []string{kb.ID}, []string{"%kept%"}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	deleted, err = chunkRepo.DeleteByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestKnowledgeBaseRepository_RefreshStats(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	kbRepo := NewKnowledgeBaseRepository(pool)
	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	kb := createTestKnowledgeBase(ctx, t, kbRepo)
	doc := newTestDocument(kb.ID)
	require.NoError(t, docRepo.Create(ctx, doc))
	storeTestChunk(ctx, t, chunkRepo, doc.ID, kb.ID, "only chunk", 0, 1)

	require.NoError(t, kbRepo.RefreshStats(ctx, kb.ID))

	retrieved, err := kbRepo.GetByID(ctx, kb.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, retrieved.DocumentCount)
	assert.Equal(t, 1, retrieved.ChunkCount)

	assert.ErrorIs(t, kbRepo.RefreshStats(ctx, "missing"), domain.ErrKnowledgeBaseNotFound)
}
