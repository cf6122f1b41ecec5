// Package openai wraps the OpenAI embeddings API behind a small client used
// by the ingestion pipeline and query-time retrieval.
package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultEmbeddingDimensions is the dimension of text-embedding-3-small vectors
	DefaultEmbeddingDimensions = 1536

	// maxBatchSize caps texts per upstream embeddings call
	maxBatchSize = 100
	// maxTextChars caps the cleaned text length sent upstream
	maxTextChars = 32000
)

var (
	// ErrEmptyText is returned when text is empty after cleaning
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrLengthMismatch is returned when similarity is computed on unequal vectors
	ErrLengthMismatch = errors.New("vectors have different lengths")
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// EmbeddingItem is one vector from an upstream response. Index refers to the
// position of the corresponding input text; responses are not guaranteed to
// arrive ordered.
type EmbeddingItem struct {
	Index     int
	Embedding []float32
}

// EmbeddingAPI defines the interface for the upstream embeddings endpoint
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([]EmbeddingItem, error)
}

// Client generates embeddings with a fixed model and dimension count. It is
// constructed once per process and shared; all methods are safe for
// concurrent use.
type Client struct {
	api        EmbeddingAPI
	model      string
	dimensions int
}

type openAIAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func newOpenAIAdapter(apiKey string, model openai.EmbeddingModel) *openAIAdapter {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &openAIAdapter{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// CreateEmbeddings calls the OpenAI API for one batch of texts
func (a *openAIAdapter) CreateEmbeddings(ctx context.Context, texts []string) ([]EmbeddingItem, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	items := make([]EmbeddingItem, 0, len(resp.Data))
	for _, d := range resp.Data {
		items = append(items, EmbeddingItem{Index: d.Index, Embedding: d.Embedding})
	}
	return items, nil
}

// Config holds embedding client configuration.
type Config struct {
	APIKey              string
	EmbeddingModel      string
	EmbeddingDimensions int
}

// NewClient creates a new embedding client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new embedding client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	model := cfg.EmbeddingModel
	if model == "" {
		model = string(DefaultEmbeddingModel)
	}
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &Client{
		api:        newOpenAIAdapter(cfg.APIKey, openai.EmbeddingModel(model)),
		model:      model,
		dimensions: dimensions,
	}
}

// NewClientFromEnv creates a new embedding client using OPENAI_API_KEY
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// Model returns the configured embedding model name.
func (c *Client) Model() string {
	return c.model
}

// Dimensions returns the configured embedding dimension count.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// CleanText normalizes text before embedding: whitespace runs collapse to
// single spaces, NUL bytes are stripped, the result is trimmed and truncated
// to the upstream input limit.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.Join(strings.Fields(text), " ")
	// The limit counts characters, not bytes; a byte slice could cut a
	// multi-byte rune in half.
	if utf8.RuneCountInString(text) > maxTextChars {
		text = string([]rune(text)[:maxTextChars])
	}
	return text
}

// Embed generates an embedding for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	cleaned := CleanText(text)
	if cleaned == "" {
		return nil, ErrEmptyText
	}

	items, err := c.api.CreateEmbeddings(ctx, []string{cleaned})
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("embedding failed: no embedding data returned")
	}

	return items[0].Embedding, nil
}

// EmbedBatch embeds many texts. Blank entries are filtered out before any
// upstream call; the remainder is sent in batches of at most maxBatchSize
// and reassembled in input order using the per-item response index. A batch
// failure aborts the remaining batches.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	cleaned := make([]string, 0, len(texts))
	for _, t := range texts {
		if ct := CleanText(t); ct != "" {
			cleaned = append(cleaned, ct)
		}
	}
	if len(cleaned) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, 0, len(cleaned))
	for start := 0; start < len(cleaned); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(cleaned) {
			end = len(cleaned)
		}

		items, err := c.api.CreateEmbeddings(ctx, cleaned[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding failed: %w", err)
		}
		if len(items) != end-start {
			return nil, fmt.Errorf("embedding failed: expected %d embeddings, got %d", end-start, len(items))
		}

		// Indices restore input order within the batch.
		sort.Slice(items, func(i, j int) bool { return items[i].Index < items[j].Index })
		for _, item := range items {
			results = append(results, item.Embedding)
		}
	}

	return results, nil
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Unequal lengths indicate a programming error and fail loudly; a zero
// vector yields 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrLengthMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
