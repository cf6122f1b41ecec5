package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/botweaver/knowledge/internal/domain"
	"github.com/botweaver/knowledge/internal/pagination"
	"github.com/botweaver/knowledge/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

type MockHandlerIngester struct {
	mock.Mock
}

func (m *MockHandlerIngester) ProcessDocuments(ctx context.Context, documentIDs []string) []service.DocumentResult {
	args := m.Called(ctx, documentIDs)
	return args.Get(0).([]service.DocumentResult)
}

func newDocumentRequest(method, target, kbID string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", kbID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestDocumentHandler_Create_Success(t *testing.T) {
	store := new(MockDocumentStore)
	store.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.Document) bool {
		return d.KnowledgeBaseID == "kb-1" &&
			d.Type == domain.DocumentTypeCSV &&
			d.Status == domain.DocumentStatusPending &&
			d.ID != ""
	})).Return(nil)

	handler := NewDocumentHandler(store, new(MockHandlerIngester))

	body, _ := json.Marshal(CreateDocumentRequest{Type: "CSV", Name: "products.csv", FilePath: "/data/products.csv"})
	rec := httptest.NewRecorder()
	handler.Create(rec, newDocumentRequest(http.MethodPost, "/knowledge-bases/kb-1/documents", "kb-1", body))

	assert.Equal(t, http.StatusCreated, rec.Code)
	store.AssertExpectations(t)
}

func TestDocumentHandler_Create_MissingSource(t *testing.T) {
	handler := NewDocumentHandler(new(MockDocumentStore), new(MockHandlerIngester))

	body, _ := json.Marshal(CreateDocumentRequest{Type: "txt", Name: "orphan.txt"})
	rec := httptest.NewRecorder()
	handler.Create(rec, newDocumentRequest(http.MethodPost, "/knowledge-bases/kb-1/documents", "kb-1", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_Create_InvalidType(t *testing.T) {
	handler := NewDocumentHandler(new(MockDocumentStore), new(MockHandlerIngester))

	body, _ := json.Marshal(CreateDocumentRequest{Type: "mp3", Name: "song.mp3", FilePath: "/data/song.mp3"})
	rec := httptest.NewRecorder()
	handler.Create(rec, newDocumentRequest(http.MethodPost, "/knowledge-bases/kb-1/documents", "kb-1", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_Get_NotFound(t *testing.T) {
	store := new(MockDocumentStore)
	store.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrDocumentNotFound)

	handler := NewDocumentHandler(store, new(MockHandlerIngester))

	rec := httptest.NewRecorder()
	handler.Get(rec, newDocumentRequest(http.MethodGet, "/documents/missing", "missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentHandler_Process_PerDocumentResults(t *testing.T) {
	ingester := new(MockHandlerIngester)
	ingester.On("ProcessDocuments", mock.Anything, []string{"doc-1", "doc-2"}).
		Return([]service.DocumentResult{
			{DocumentID: "doc-1"},
			{DocumentID: "doc-2", Err: errors.New("extraction failed")},
		})

	handler := NewDocumentHandler(new(MockDocumentStore), ingester)

	body, _ := json.Marshal(ProcessDocumentsRequest{DocumentIDs: []string{"doc-1", "doc-2"}})
	req := httptest.NewRequest(http.MethodPost, "/documents/process", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Process(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []*ProcessResultResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.True(t, resp.Data[0].Success)
	assert.False(t, resp.Data[1].Success)
	assert.Contains(t, resp.Data[1].Error, "extraction failed")
}

func TestDocumentHandler_Process_EmptyIDs(t *testing.T) {
	handler := NewDocumentHandler(new(MockDocumentStore), new(MockHandlerIngester))

	body, _ := json.Marshal(ProcessDocumentsRequest{})
	req := httptest.NewRequest(http.MethodPost, "/documents/process", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Process(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_List(t *testing.T) {
	now := time.Now().UTC()
	store := new(MockDocumentStore)
	store.On("ListByKnowledgeBase", mock.Anything, "kb-1", (*pagination.Cursor)(nil), 20).
		Return(&pagination.PageResult[*domain.Document]{
			Items: []*domain.Document{
				{ID: "doc-1", KnowledgeBaseID: "kb-1", Type: domain.DocumentTypeTxt, Name: "a.txt", Status: domain.DocumentStatusCompleted, ChunkCount: 3, CreatedAt: now, UpdatedAt: now},
			},
			HasMore: false,
		}, nil)

	handler := NewDocumentHandler(store, new(MockHandlerIngester))

	rec := httptest.NewRecorder()
	handler.List(rec, newDocumentRequest(http.MethodGet, "/knowledge-bases/kb-1/documents", "kb-1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data ListDocumentsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Documents, 1)
	assert.Equal(t, "doc-1", resp.Data.Documents[0].ID)
	assert.Equal(t, 3, resp.Data.Documents[0].ChunkCount)
	assert.False(t, resp.Data.HasMore)
}

func TestDocumentHandler_List_InvalidCursor(t *testing.T) {
	handler := NewDocumentHandler(new(MockDocumentStore), new(MockHandlerIngester))

	rec := httptest.NewRecorder()
	handler.List(rec, newDocumentRequest(http.MethodGet, "/knowledge-bases/kb-1/documents?cursor=!!!", "kb-1", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
