package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/botweaver/knowledge/internal/api"
	"github.com/botweaver/knowledge/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type KnowledgeBaseStore interface {
	Create(ctx context.Context, kb *domain.KnowledgeBase) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeBase, error)
}

type KnowledgeBaseHandler struct {
	store KnowledgeBaseStore
}

func NewKnowledgeBaseHandler(store KnowledgeBaseStore) *KnowledgeBaseHandler {
	return &KnowledgeBaseHandler{store: store}
}

type CreateKnowledgeBaseRequest struct {
	OrgID        string `json:"org_id"`
	Name         string `json:"name"`
	ChunkSize    int    `json:"chunk_size,omitempty"`
	ChunkOverlap int    `json:"chunk_overlap,omitempty"`
}

type KnowledgeBaseResponse struct {
	ID            string `json:"id"`
	OrgID         string `json:"org_id"`
	Name          string `json:"name"`
	ChunkSize     int    `json:"chunk_size"`
	ChunkOverlap  int    `json:"chunk_overlap"`
	DocumentCount int    `json:"document_count"`
	ChunkCount    int    `json:"chunk_count"`
	CreatedAt     string `json:"created_at"`
}

func (h *KnowledgeBaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateKnowledgeBaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := time.Now().UTC()
	kb := &domain.KnowledgeBase{
		ID:           uuid.NewString(),
		OrgID:        req.OrgID,
		Name:         req.Name,
		ChunkSize:    req.ChunkSize,
		ChunkOverlap: req.ChunkOverlap,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := domain.ValidateKnowledgeBase(kb); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Create(r.Context(), kb); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, toKnowledgeBaseResponse(kb))
}

func (h *KnowledgeBaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	kb, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, toKnowledgeBaseResponse(kb))
}

func toKnowledgeBaseResponse(kb *domain.KnowledgeBase) *KnowledgeBaseResponse {
	return &KnowledgeBaseResponse{
		ID:            kb.ID,
		OrgID:         kb.OrgID,
		Name:          kb.Name,
		ChunkSize:     kb.EffectiveChunkSize(),
		ChunkOverlap:  kb.EffectiveChunkOverlap(),
		DocumentCount: kb.DocumentCount,
		ChunkCount:    kb.ChunkCount,
		CreatedAt:     kb.CreatedAt.Format(time.RFC3339),
	}
}
