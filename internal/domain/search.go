package domain

// SearchResult is a transient retrieval hit, produced by the chunk store and
// consumed by the retrieval service. It is never persisted.
type SearchResult struct {
	ChunkID           string
	Content           string
	DocumentName      string
	KnowledgeBaseName string
	KnowledgeBaseID   string
	ChunkIndex        int
	Similarity        float64
}

// ContextSource describes one retrieved source in a context result, in the
// same order as its block appears in the rendered context.
type ContextSource struct {
	DocumentName      string  `json:"document_name"`
	KnowledgeBaseName string  `json:"knowledge_base_name"`
	Similarity        float64 `json:"similarity"`
	ChunkIndex        int     `json:"chunk_index"`
}

// ContextResult is the assembled output handed to the chat runtime. Retrieval
// failures degrade to HasContext=false with Error set; they never propagate.
type ContextResult struct {
	HasContext bool            `json:"has_context"`
	Context    string          `json:"context,omitempty"`
	Sources    []ContextSource `json:"sources,omitempty"`
	Error      string          `json:"error,omitempty"`
}
