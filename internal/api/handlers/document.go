package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/botweaver/knowledge/internal/api"
	"github.com/botweaver/knowledge/internal/domain"
	"github.com/botweaver/knowledge/internal/pagination"
	"github.com/botweaver/knowledge/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type DocumentStore interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByKnowledgeBase(ctx context.Context, kbID string, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.Document], error)
}

type DocumentIngester interface {
	ProcessDocuments(ctx context.Context, documentIDs []string) []service.DocumentResult
}

type DocumentHandler struct {
	store    DocumentStore
	ingester DocumentIngester
}

func NewDocumentHandler(store DocumentStore, ingester DocumentIngester) *DocumentHandler {
	return &DocumentHandler{store: store, ingester: ingester}
}

type CreateDocumentRequest struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	FilePath  string `json:"file_path,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

type DocumentResponse struct {
	ID              string `json:"id"`
	KnowledgeBaseID string `json:"knowledge_base_id"`
	Type            string `json:"type"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	ContentHash     string `json:"content_hash,omitempty"`
	ChunkCount      int    `json:"chunk_count"`
	Error           string `json:"error,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

type ProcessDocumentsRequest struct {
	DocumentIDs []string `json:"document_ids"`
}

type ProcessResultResponse struct {
	DocumentID string `json:"document_id"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type ListDocumentsResponse struct {
	Documents []*DocumentResponse `json:"documents"`
	Cursor    string              `json:"cursor,omitempty"`
	HasMore   bool                `json:"has_more"`
}

// Create registers a new document under a knowledge base in the pending
// state. Processing happens asynchronously through the ingestion worker or
// explicitly via Process.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	kbID := chi.URLParam(r, "id")

	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:              uuid.NewString(),
		KnowledgeBaseID: kbID,
		Type:            domain.NormalizeDocumentType(req.Type),
		Name:            req.Name,
		FilePath:        req.FilePath,
		SourceURL:       req.SourceURL,
		Status:          domain.DocumentStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := domain.ValidateDocument(doc); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Create(r.Context(), doc); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, toDocumentResponse(doc))
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, toDocumentResponse(doc))
}

// Process runs the ingestion pipeline for the requested documents. The
// response carries one result per id; a failed document never aborts the
// rest of the batch.
func (h *DocumentHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.DocumentIDs) == 0 {
		api.Error(w, http.StatusBadRequest, "document_ids is required")
		return
	}

	results := h.ingester.ProcessDocuments(r.Context(), req.DocumentIDs)

	resp := make([]*ProcessResultResponse, 0, len(results))
	for _, res := range results {
		item := &ProcessResultResponse{
			DocumentID: res.DocumentID,
			Success:    res.Err == nil,
		}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		resp = append(resp, item)
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	kbID := chi.URLParam(r, "id")

	var cursor *pagination.Cursor
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		decoded, err := pagination.DecodeCursor(raw)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid cursor")
			return
		}
		cursor = decoded
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	page, err := h.store.ListByKnowledgeBase(r.Context(), kbID, cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := &ListDocumentsResponse{
		Documents: make([]*DocumentResponse, 0, len(page.Items)),
		Cursor:    page.Cursor,
		HasMore:   page.HasMore,
	}
	for _, doc := range page.Items {
		resp.Documents = append(resp.Documents, toDocumentResponse(doc))
	}

	api.Success(w, http.StatusOK, resp)
}

func toDocumentResponse(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:              d.ID,
		KnowledgeBaseID: d.KnowledgeBaseID,
		Type:            string(d.Type),
		Name:            d.Name,
		Status:          string(d.Status),
		ContentHash:     d.ContentHash,
		ChunkCount:      d.ChunkCount,
		Error:           d.Error,
		CreatedAt:       d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       d.UpdatedAt.Format(time.RFC3339),
	}
}
