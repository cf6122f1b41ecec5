package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeExtraction       = "EXTRACTION_ERROR"
	ErrCodeEmbedding        = "EMBEDDING_ERROR"
	ErrCodeSearch           = "SEARCH_ERROR"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidDocumentType   = NewDomainError(ErrCodeValidation, "invalid document type")
	ErrInvalidDocumentStatus = NewDomainError(ErrCodeValidation, "invalid document status")
	ErrMissingRequiredField  = NewDomainError(ErrCodeValidation, "missing required field")
	ErrLengthMismatch        = NewDomainError(ErrCodeValidation, "vectors have different lengths")
)

// Not found errors
var (
	ErrDocumentNotFound      = NewDomainError(ErrCodeNotFound, "document not found")
	ErrKnowledgeBaseNotFound = NewDomainError(ErrCodeNotFound, "knowledge base not found")
	ErrBotConfigNotFound     = NewDomainError(ErrCodeNotFound, "bot configuration not found")
)

// Extraction errors
var (
	ErrMissingPath     = NewDomainError(ErrCodeExtraction, "document has no file path")
	ErrMissingSource   = NewDomainError(ErrCodeExtraction, "document has no source URL")
	ErrUnsupportedType = NewDomainError(ErrCodeExtraction, "no extractor for document type")
	ErrEmptyFile       = NewDomainError(ErrCodeExtraction, "file is empty")
	ErrNoDataRows      = NewDomainError(ErrCodeExtraction, "file contains a header but no data rows")
)

// Pipeline errors
var (
	ErrEmptyContent      = NewDomainError(ErrCodeInvalidOperation, "extracted content is empty")
	ErrNoChunksGenerated = NewDomainError(ErrCodeInvalidOperation, "chunking produced no chunks")
)

// NewEmbeddingFailed wraps an upstream embedding API error.
func NewEmbeddingFailed(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeEmbedding, "embedding failed", err)
}

// NewSearchFailed wraps a store or query error raised during retrieval.
func NewSearchFailed(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeSearch, "search failed", err)
}
