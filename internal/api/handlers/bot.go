package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/botweaver/knowledge/internal/api"
	"github.com/go-chi/chi/v5"
)

type BotService interface {
	LinkKnowledgeBase(ctx context.Context, botID, kbID string) error
	UnlinkKnowledgeBase(ctx context.Context, botID string) error
	LinkedKnowledgeBases(ctx context.Context, botID string) ([]string, error)
}

type BotHandler struct {
	svc BotService
}

func NewBotHandler(svc BotService) *BotHandler {
	return &BotHandler{svc: svc}
}

type LinkKnowledgeBaseRequest struct {
	KnowledgeBaseID string `json:"knowledge_base_id"`
}

type LinkedKnowledgeBasesResponse struct {
	BotID            string   `json:"bot_id"`
	KnowledgeBaseIDs []string `json:"knowledge_base_ids"`
}

func (h *BotHandler) Link(w http.ResponseWriter, r *http.Request) {
	botID := chi.URLParam(r, "botID")

	var req LinkKnowledgeBaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.KnowledgeBaseID == "" {
		api.Error(w, http.StatusBadRequest, "knowledge_base_id is required")
		return
	}

	if err := h.svc.LinkKnowledgeBase(r.Context(), botID, req.KnowledgeBaseID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "linked"})
}

func (h *BotHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	botID := chi.URLParam(r, "botID")

	if err := h.svc.UnlinkKnowledgeBase(r.Context(), botID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "unlinked"})
}

func (h *BotHandler) ListLinked(w http.ResponseWriter, r *http.Request) {
	botID := chi.URLParam(r, "botID")

	kbIDs, err := h.svc.LinkedKnowledgeBases(r.Context(), botID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, &LinkedKnowledgeBasesResponse{
		BotID:            botID,
		KnowledgeBaseIDs: kbIDs,
	})
}
