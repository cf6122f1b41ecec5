//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/botweaver/knowledge/internal/api/handlers"
	"github.com/botweaver/knowledge/internal/extract"
	"github.com/botweaver/knowledge/internal/repository"
	"github.com/botweaver/knowledge/internal/server"
	"github.com/botweaver/knowledge/internal/service"
	"github.com/botweaver/knowledge/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with a pgvector container
// and an in-process HTTP server. Embeddings come from a deterministic local
// embedder so the whole pipeline runs without external services.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// CreateKnowledgeBase creates a knowledge base and returns its ID.
func (e *E2ETestEnv) CreateKnowledgeBase(name string) string {
	resp, err := e.Post("/knowledge-bases", map[string]interface{}{"name": name})
	if err != nil {
		e.T.Fatalf("failed to create knowledge base: %v", err)
	}

	var kb struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &kb); err != nil {
		e.T.Fatalf("failed to parse knowledge base response: %v", err)
	}
	return kb.ID
}

// CreateTextDocument writes content to a temp file and registers it as a
// txt document under the knowledge base. Returns the document ID.
func (e *E2ETestEnv) CreateTextDocument(kbID, name, content string) string {
	f, err := os.CreateTemp("", "e2e-doc-*.txt")
	if err != nil {
		e.T.Fatalf("failed to create temp file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		e.T.Fatalf("failed to write temp file: %v", err)
	}
	f.Close()
	e.T.Cleanup(func() { os.Remove(f.Name()) })

	resp, err := e.Post("/knowledge-bases/"+kbID+"/documents", map[string]interface{}{
		"type":      "txt",
		"name":      name,
		"file_path": f.Name(),
	})
	if err != nil {
		e.T.Fatalf("failed to create document: %v", err)
	}

	var doc struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		e.T.Fatalf("failed to parse document response: %v", err)
	}
	return doc.ID
}

// ProcessDocuments triggers synchronous processing for the given IDs and
// fails the test if any of them did not succeed.
func (e *E2ETestEnv) ProcessDocuments(ids ...string) {
	resp, err := e.Post("/documents/process", map[string]interface{}{"document_ids": ids})
	if err != nil {
		e.T.Fatalf("failed to process documents: %v", err)
	}

	var results []struct {
		DocumentID string `json:"document_id"`
		Success    bool   `json:"success"`
		Error      string `json:"error"`
	}
	if err := json.Unmarshal(resp.Data, &results); err != nil {
		e.T.Fatalf("failed to parse process response: %v", err)
	}
	for _, r := range results {
		if !r.Success {
			e.T.Fatalf("document %s failed to process: %s", r.DocumentID, r.Error)
		}
	}
}

// LinkBot links a knowledge base to a bot.
func (e *E2ETestEnv) LinkBot(botID, kbID string) {
	_, err := e.Post("/bots/"+botID+"/knowledge-bases", map[string]interface{}{
		"knowledge_base_id": kbID,
	})
	if err != nil {
		e.T.Fatalf("failed to link knowledge base: %v", err)
	}
}

// ContextResult mirrors the context query response body.
type ContextResult struct {
	HasContext bool   `json:"has_context"`
	Context    string `json:"context"`
	Error      string `json:"error"`
	Sources    []struct {
		DocumentName string  `json:"document_name"`
		Similarity   float64 `json:"similarity"`
	} `json:"sources"`
}

// QueryContext runs a context query for the bot and returns the result.
func (e *E2ETestEnv) QueryContext(botID, query string) *ContextResult {
	resp, err := e.Post("/context/query", map[string]interface{}{
		"bot_id": botID,
		"query":  query,
	})
	if err != nil {
		e.T.Fatalf("context query failed: %v", err)
	}

	var result ContextResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		e.T.Fatalf("failed to parse context response: %v", err)
	}
	return &result
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest("POST", path, body)
}

// Delete performs a DELETE request
func (e *E2ETestEnv) Delete(path string) (*APIResponse, error) {
	return e.doRequest("DELETE", path, nil)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// startServer starts the HTTP server with all handlers
func startServer(t *testing.T, pool *pgxpool.Pool, port int) (string, func()) {
	docRepo := repository.NewDocumentRepository(pool)
	kbRepo := repository.NewKnowledgeBaseRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	botRepo := repository.NewBotConfigRepository(pool)

	embedder := newHashEmbedder(1536)
	extractor := extract.NewServiceWith(localFiles{}, http.DefaultClient)

	ingestSvc := service.NewIngestService(docRepo, kbRepo, chunkRepo, extractor, embedder)
	retrievalSvc := service.NewRetrievalService(botRepo, chunkRepo, embedder)

	cfg := server.RouterConfig{
		KnowledgeBaseHandler: handlers.NewKnowledgeBaseHandler(kbRepo),
		DocumentHandler:      handlers.NewDocumentHandler(docRepo, ingestSvc),
		ContextHandler:       handlers.NewContextHandler(retrievalSvc),
		BotHandler:           handlers.NewBotHandler(retrievalSvc),
	}

	router := server.NewRouter(cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// localFiles reads document sources straight from the local filesystem.
type localFiles struct{}

func (localFiles) ReadFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

// hashEmbedder produces deterministic bag-of-words embeddings. Texts that
// share words land close together under cosine similarity, which is enough
// to exercise the full ingest and retrieval pipeline against pgvector.
type hashEmbedder struct {
	dims int
}

func newHashEmbedder(dims int) *hashEmbedder {
	return &hashEmbedder{dims: dims}
}

func (h *hashEmbedder) Dimensions() int { return h.dims }

func (h *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return h.vectorFor(text), nil
}

func (h *hashEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = h.vectorFor(t)
	}
	return out, nil
}

func (h *hashEmbedder) vectorFor(text string) []float32 {
	vec := make([]float32, h.dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		hash := fnv.New32a()
		hash.Write([]byte(word))
		vec[int(hash.Sum32())%h.dims]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}
