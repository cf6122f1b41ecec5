package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/botweaver/knowledge/internal/api/handlers"
	"github.com/botweaver/knowledge/internal/domain"
	"github.com/botweaver/knowledge/internal/pagination"
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

type MockBotService struct {
	mock.Mock
}

func (m *MockBotService) LinkKnowledgeBase(ctx context.Context, botID, kbID string) error {
	args := m.Called(ctx, botID, kbID)
	return args.Error(0)
}

func (m *MockBotService) UnlinkKnowledgeBase(ctx context.Context, botID string) error {
	args := m.Called(ctx, botID)
	return args.Error(0)
}

func (m *MockBotService) LinkedKnowledgeBases(ctx context.Context, botID string) ([]string, error) {
	args := m.Called(ctx, botID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockKnowledgeBaseStore struct {
	mock.Mock
}

func (m *MockKnowledgeBaseStore) Create(ctx context.Context, kb *domain.KnowledgeBase) error {
	args := m.Called(ctx, kb)
	return args.Error(0)
}

func (m *MockKnowledgeBaseStore) GetByID(ctx context.Context, id string) (*domain.KnowledgeBase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeBase), args.Error(1)
}

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Create(ctx context.Context, d *domain.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentStore) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentStore) ListByKnowledgeBase(ctx context.Context, kbID string, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.Document], error) {
	args := m.Called(ctx, kbID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.PageResult[*domain.Document]), args.Error(1)
}

type MockIngester struct {
	mock.Mock
}

func (m *MockIngester) ProcessDocuments(ctx context.Context, documentIDs []string) []service.DocumentResult {
	args := m.Called(ctx, documentIDs)
	return args.Get(0).([]service.DocumentResult)
}

func newTestRouter(ctxSvc *MockContextService, botSvc *MockBotService, kbStore *MockKnowledgeBaseStore, docStore *MockDocumentStore, ingester *MockIngester) http.Handler {
	return NewRouter(RouterConfig{
		KnowledgeBaseHandler: handlers.NewKnowledgeBaseHandler(kbStore),
		DocumentHandler:      handlers.NewDocumentHandler(docStore, ingester),
		ContextHandler:       handlers.NewContextHandler(ctxSvc),
		BotHandler:           handlers.NewBotHandler(botSvc),
	})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(new(MockContextService), new(MockBotService), new(MockKnowledgeBaseStore), new(MockDocumentStore), new(MockIngester))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_ContextQuery(t *testing.T) {
	ctxSvc := new(MockContextService)
	ctxSvc.On("GetContextForQuery", mock.Anything, "bot-1", "hello", mock.Anything).
		Return(&domain.ContextResult{HasContext: false})

	router := newTestRouter(ctxSvc, new(MockBotService), new(MockKnowledgeBaseStore), new(MockDocumentStore), new(MockIngester))

	body, _ := json.Marshal(map[string]string{"bot_id": "bot-1", "query": "hello"})
	req := httptest.NewRequest(http.MethodPost, "/context/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	ctxSvc.AssertExpectations(t)
}

func TestRouter_BotLinkRoutes(t *testing.T) {
	botSvc := new(MockBotService)
	botSvc.On("LinkKnowledgeBase", mock.Anything, "bot-1", "kb-1").Return(nil)
	botSvc.On("LinkedKnowledgeBases", mock.Anything, "bot-1").Return([]string{"kb-1"}, nil)
	botSvc.On("UnlinkKnowledgeBase", mock.Anything, "bot-1").Return(nil)

	router := newTestRouter(new(MockContextService), botSvc, new(MockKnowledgeBaseStore), new(MockDocumentStore), new(MockIngester))

	body, _ := json.Marshal(map[string]string{"knowledge_base_id": "kb-1"})
	req := httptest.NewRequest(http.MethodPost, "/bots/bot-1/knowledge-bases", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/bots/bot-1/knowledge-bases", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data handlers.LinkedKnowledgeBasesResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"kb-1"}, resp.Data.KnowledgeBaseIDs)

	req = httptest.NewRequest(http.MethodDelete, "/bots/bot-1/knowledge-bases", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	botSvc.AssertExpectations(t)
}

func TestRouter_BodyTooLarge(t *testing.T) {
	router := newTestRouter(new(MockContextService), new(MockBotService), new(MockKnowledgeBaseStore), new(MockDocumentStore), new(MockIngester))

	req := httptest.NewRequest(http.MethodPost, "/context/query", bytes.NewReader(make([]byte, 6*1024*1024)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(new(MockContextService), new(MockBotService), new(MockKnowledgeBaseStore), new(MockDocumentStore), new(MockIngester))

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
