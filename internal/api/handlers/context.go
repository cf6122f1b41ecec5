package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/botweaver/knowledge/internal/api"
	"github.com/botweaver/knowledge/internal/domain"
	"github.com/botweaver/knowledge/internal/service"
)

type ContextService interface {
	GetContextForQuery(ctx context.Context, botID, query string, opts service.ContextOptions) *domain.ContextResult
}

type ContextHandler struct {
	svc ContextService
}

func NewContextHandler(svc ContextService) *ContextHandler {
	return &ContextHandler{svc: svc}
}

type ContextQueryRequest struct {
	BotID     string  `json:"bot_id"`
	Query     string  `json:"query"`
	MaxChunks int     `json:"max_chunks,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

type PromptRequest struct {
	BotID      string  `json:"bot_id"`
	Query      string  `json:"query"`
	BasePrompt string  `json:"base_prompt,omitempty"`
	MaxChunks  int     `json:"max_chunks,omitempty"`
	Threshold  float64 `json:"threshold,omitempty"`
}

type PromptResponse struct {
	Prompt     string                 `json:"prompt"`
	HasContext bool                   `json:"has_context"`
	Sources    []domain.ContextSource `json:"sources,omitempty"`
}

// Query returns assembled knowledge base context for a bot and free-text
// query. The result always has status 200: retrieval failures surface as
// has_context=false so the chat runtime degrades instead of erroring.
func (h *ContextHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req ContextQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BotID == "" || req.Query == "" {
		api.Error(w, http.StatusBadRequest, "bot_id and query are required")
		return
	}

	result := h.svc.GetContextForQuery(r.Context(), req.BotID, req.Query, service.ContextOptions{
		MaxChunks: req.MaxChunks,
		Threshold: req.Threshold,
	})

	api.Success(w, http.StatusOK, result)
}

// Prompt returns a complete system prompt for the bot: its base persona
// plus retrieved context wrapped in grounding instructions, or a refusal
// block when no context is available.
func (h *ContextHandler) Prompt(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BotID == "" || req.Query == "" {
		api.Error(w, http.StatusBadRequest, "bot_id and query are required")
		return
	}

	result := h.svc.GetContextForQuery(r.Context(), req.BotID, req.Query, service.ContextOptions{
		MaxChunks: req.MaxChunks,
		Threshold: req.Threshold,
	})

	resp := &PromptResponse{
		Prompt:     service.BuildRAGPrompt(req.BasePrompt, result.Context),
		HasContext: result.HasContext,
		Sources:    result.Sources,
	}

	api.Success(w, http.StatusOK, resp)
}
