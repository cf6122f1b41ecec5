package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/botweaver/knowledge/internal/domain"
	"github.com/botweaver/knowledge/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockContextService struct {
	mock.Mock
}

func (m *MockContextService) GetContextForQuery(ctx context.Context, botID, query string, opts service.ContextOptions) *domain.ContextResult {
	args := m.Called(ctx, botID, query, opts)
	return args.Get(0).(*domain.ContextResult)
}

func TestContextHandler_Query_Success(t *testing.T) {
	svc := new(MockContextService)
	svc.On("GetContextForQuery", mock.Anything, "bot-1", "price of 8698686923236", service.ContextOptions{}).
		Return(&domain.ContextResult{
			HasContext: true,
			Context:    "[Source 1: products.csv]\nROW: [Barcode: 8698686923236] [Price: 12.50]",
			Sources: []domain.ContextSource{
				{DocumentName: "products.csv", KnowledgeBaseName: "Catalog", Similarity: 1.0},
			},
		})

	handler := NewContextHandler(svc)

	body, _ := json.Marshal(ContextQueryRequest{BotID: "bot-1", Query: "price of 8698686923236"})
	req := httptest.NewRequest(http.MethodPost, "/context/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Query(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.ContextResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.HasContext)
	assert.Contains(t, resp.Data.Context, "[Source 1: products.csv]")
	require.Len(t, resp.Data.Sources, 1)
	assert.Equal(t, "Catalog", resp.Data.Sources[0].KnowledgeBaseName)
}

func TestContextHandler_Query_DegradedStillOK(t *testing.T) {
	svc := new(MockContextService)
	svc.On("GetContextForQuery", mock.Anything, "bot-1", "anything", mock.Anything).
		Return(&domain.ContextResult{HasContext: false, Error: "conn refused"})

	handler := NewContextHandler(svc)

	body, _ := json.Marshal(ContextQueryRequest{BotID: "bot-1", Query: "anything"})
	req := httptest.NewRequest(http.MethodPost, "/context/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Query(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.ContextResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Data.HasContext)
}

func TestContextHandler_Query_MissingFields(t *testing.T) {
	handler := NewContextHandler(new(MockContextService))

	body, _ := json.Marshal(ContextQueryRequest{Query: "no bot id"})
	req := httptest.NewRequest(http.MethodPost, "/context/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Query(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContextHandler_Prompt_WithContext(t *testing.T) {
	svc := new(MockContextService)
	svc.On("GetContextForQuery", mock.Anything, "bot-1", "price of 8698686923236", mock.Anything).
		Return(&domain.ContextResult{
			HasContext: true,
			Context:    "[Source 1: products.csv]\nROW: [Barcode: 8698686923236]",
		})

	handler := NewContextHandler(svc)

	body, _ := json.Marshal(PromptRequest{BotID: "bot-1", Query: "price of 8698686923236", BasePrompt: "You are a shop bot."})
	req := httptest.NewRequest(http.MethodPost, "/context/prompt", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Prompt(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data PromptResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.HasContext)
	assert.Contains(t, resp.Data.Prompt, "You are a shop bot.")
	assert.Contains(t, resp.Data.Prompt, "=== KNOWLEDGE BASE CONTENT ===")
	assert.Contains(t, resp.Data.Prompt, "=== END KNOWLEDGE BASE ===")
}

func TestContextHandler_Prompt_WithoutContext(t *testing.T) {
	svc := new(MockContextService)
	svc.On("GetContextForQuery", mock.Anything, "bot-1", "hello", mock.Anything).
		Return(&domain.ContextResult{HasContext: false})

	handler := NewContextHandler(svc)

	body, _ := json.Marshal(PromptRequest{BotID: "bot-1", Query: "hello"})
	req := httptest.NewRequest(http.MethodPost, "/context/prompt", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Prompt(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data PromptResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Data.HasContext)
	assert.NotContains(t, resp.Data.Prompt, "=== KNOWLEDGE BASE CONTENT ===")
	assert.Contains(t, resp.Data.Prompt, "No knowledge base is attached")
}

func TestContextHandler_Query_InvalidBody(t *testing.T) {
	handler := NewContextHandler(new(MockContextService))

	req := httptest.NewRequest(http.MethodPost, "/context/query", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	handler.Query(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
