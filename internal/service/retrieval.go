package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/botweaver/knowledge/internal/domain"
	"github.com/botweaver/knowledge/internal/telemetry"
)

// QueryEmbedder vectorizes a single query string.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SearchChunkRepository defines the chunk queries retrieval needs.
type SearchChunkRepository interface {
	SearchByEmbedding(ctx context.Context, kbIDs []string, embedding []float32, limit int, threshold float64) ([]*domain.SearchResult, error)
	SearchByContent(ctx context.Context, kbIDs []string, patterns []string, limit int) ([]*domain.SearchResult, error)
}

// BotConfigStore resolves and manages a bot's linked knowledge bases.
type BotConfigStore interface {
	GetLinkedKnowledgeBases(ctx context.Context, botID string) ([]string, error)
	LinkKnowledgeBase(ctx context.Context, botID, kbID string) error
	UnlinkKnowledgeBase(ctx context.Context, botID string) error
}

const (
	// DefaultMaxContextChunks bounds how many chunks a single query may pull.
	DefaultMaxContextChunks = 20
	// DefaultSimilarityThreshold excludes weakly related vector matches.
	DefaultSimilarityThreshold = 0.7
)

// Product identifiers are matched in priority order: a full 13-digit
// barcode wins over a partial run, which wins over a bare 4-digit code.
var (
	fullBarcodeRe    = regexp.MustCompile(`\d{13}`)
	partialBarcodeRe = regexp.MustCompile(`\d{5,12}`)
	shortCodeRe      = regexp.MustCompile(`\b\d{4}\b`)
)

// BarcodeMatch is the result of scanning a query for product identifiers.
type BarcodeMatch struct {
	Barcodes []string
	Type     string
	IsShort  bool
}

// ExtractBarcodeFromQuery scans a free-text query for product identifiers.
// The first regex that matches wins; matches are deduplicated preserving
// first-seen order. Returns nil when the query carries no digit run of a
// matching length. A 4-digit year in a query is indistinguishable from a
// short product code and will match the short pattern.
func ExtractBarcodeFromQuery(query string) *BarcodeMatch {
	type candidate struct {
		re      *regexp.Regexp
		kind    string
		isShort bool
	}
	candidates := []candidate{
		{fullBarcodeRe, "full", false},
		{partialBarcodeRe, "partial", false},
		{shortCodeRe, "short", true},
	}

	for _, c := range candidates {
		found := c.re.FindAllString(query, -1)
		if len(found) == 0 {
			continue
		}
		seen := make(map[string]bool, len(found))
		unique := make([]string, 0, len(found))
		for _, b := range found {
			if seen[b] {
				continue
			}
			seen[b] = true
			unique = append(unique, b)
		}
		return &BarcodeMatch{Barcodes: unique, Type: c.kind, IsShort: c.isShort}
	}
	return nil
}

// ContextOptions tunes context assembly. Zero values fall back to the
// defaults.
type ContextOptions struct {
	MaxChunks int
	Threshold float64
}

func (o ContextOptions) maxChunks() int {
	if o.MaxChunks <= 0 {
		return DefaultMaxContextChunks
	}
	return o.MaxChunks
}

func (o ContextOptions) threshold() float64 {
	if o.Threshold <= 0 {
		return DefaultSimilarityThreshold
	}
	return o.Threshold
}

// RetrievalService assembles grounded context for chat queries. All of its
// read paths degrade to "no context" on failure so a broken store or
// embedding API never breaks the caller's chat flow.
type RetrievalService struct {
	bots     BotConfigStore
	chunks   SearchChunkRepository
	embedder QueryEmbedder
}

// NewRetrievalService creates a new RetrievalService instance
func NewRetrievalService(bots BotConfigStore, chunks SearchChunkRepository, embedder QueryEmbedder) *RetrievalService {
	return &RetrievalService{
		bots:     bots,
		chunks:   chunks,
		embedder: embedder,
	}
}

// ExactBarcodeSearch runs a case-insensitive substring lookup for one
// identifier across the given knowledge bases. Short codes use boundary
// aware patterns so they do not match inside longer digit runs. Failures
// are logged and yield an empty slice.
func (s *RetrievalService) ExactBarcodeSearch(ctx context.Context, kbIDs []string, identifier string, isShort bool, limit int) []*domain.SearchResult {
	if len(kbIDs) == 0 {
		return []*domain.SearchResult{}
	}

	var patterns []string
	switch {
	case isShort:
		patterns = []string{
			"% " + identifier + " %",
			"% " + identifier + "]%",
			"%: " + identifier + "]%",
			"%[" + identifier + "]%",
		}
	case len(identifier) < 13:
		patterns = []string{
			"%" + identifier + "%",
			identifier + "%",
		}
	default:
		patterns = []string{"%" + identifier + "%"}
	}

	results, err := s.chunks.SearchByContent(ctx, kbIDs, patterns, limit)
	if err != nil {
		log.Printf("exact search for %q failed: %v", identifier, err)
		return []*domain.SearchResult{}
	}
	return results
}

// GetContextForQuery resolves the bot's linked knowledge bases and returns
// assembled context for the query. Identifier queries take the exact-match
// path first; everything else, and identifier queries with no exact hits,
// falls through to vector search. Errors never propagate: the result
// degrades to HasContext=false with the error message recorded.
func (s *RetrievalService) GetContextForQuery(ctx context.Context, botID, query string, opts ContextOptions) *domain.ContextResult {
	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.GetContextForQuery", telemetry.SpanAttributes{
		BotID:     botID,
		Operation: "retrieve",
	})
	defer span.End()

	kbIDs, err := s.bots.GetLinkedKnowledgeBases(ctx, botID)
	if err != nil {
		log.Printf("knowledge base lookup for bot %s failed: %v", botID, err)
		span.SetError(err)
		return &domain.ContextResult{HasContext: false, Error: err.Error()}
	}
	if len(kbIDs) == 0 {
		return &domain.ContextResult{HasContext: false}
	}

	limit := opts.maxChunks()

	var results []*domain.SearchResult
	if match := ExtractBarcodeFromQuery(query); match != nil {
		seen := make(map[string]bool)
		for _, barcode := range match.Barcodes {
			for _, r := range s.ExactBarcodeSearch(ctx, kbIDs, barcode, match.IsShort, limit) {
				if seen[r.ChunkID] {
					continue
				}
				seen[r.ChunkID] = true
				results = append(results, r)
			}
		}
	}

	if len(results) == 0 {
		embedding, err := s.embedder.Embed(ctx, query)
		if err != nil {
			log.Printf("query embedding for bot %s failed: %v", botID, err)
			span.SetError(err)
			return &domain.ContextResult{HasContext: false, Error: err.Error()}
		}
		results, err = s.chunks.SearchByEmbedding(ctx, kbIDs, embedding, limit, opts.threshold())
		if err != nil {
			log.Printf("vector search for bot %s failed: %v", botID, err)
			span.SetError(err)
			return &domain.ContextResult{HasContext: false, Error: err.Error()}
		}
	}

	if len(results) == 0 {
		return &domain.ContextResult{HasContext: false}
	}

	return &domain.ContextResult{
		HasContext: true,
		Context:    AssembleContext(results),
		Sources:    sourcesFrom(results),
	}
}

// AssembleContext renders search results as numbered source blocks joined
// by a fixed delimiter.
func AssembleContext(results []*domain.SearchResult) string {
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		blocks = append(blocks, fmt.Sprintf("[Source %d: %s]\n%s", i+1, r.DocumentName, r.Content))
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

func sourcesFrom(results []*domain.SearchResult) []domain.ContextSource {
	sources := make([]domain.ContextSource, 0, len(results))
	for _, r := range results {
		sources = append(sources, domain.ContextSource{
			DocumentName:      r.DocumentName,
			KnowledgeBaseName: r.KnowledgeBaseName,
			Similarity:        r.Similarity,
			ChunkIndex:        r.ChunkIndex,
		})
	}
	return sources
}

// LinkKnowledgeBase attaches a knowledge base to a bot. Unlike the read
// paths, management operations propagate errors.
func (s *RetrievalService) LinkKnowledgeBase(ctx context.Context, botID, kbID string) error {
	return s.bots.LinkKnowledgeBase(ctx, botID, kbID)
}

// UnlinkKnowledgeBase detaches all knowledge bases from a bot.
func (s *RetrievalService) UnlinkKnowledgeBase(ctx context.Context, botID string) error {
	return s.bots.UnlinkKnowledgeBase(ctx, botID)
}

// LinkedKnowledgeBases returns the knowledge base ids attached to a bot.
func (s *RetrievalService) LinkedKnowledgeBases(ctx context.Context, botID string) ([]string, error) {
	return s.bots.GetLinkedKnowledgeBases(ctx, botID)
}
