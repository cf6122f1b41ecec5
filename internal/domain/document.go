package domain

import (
	"fmt"
	"strings"
	"time"
)

// DocumentType identifies the source format of a document.
type DocumentType string

const (
	DocumentTypeTxt      DocumentType = "txt"
	DocumentTypeText     DocumentType = "text"
	DocumentTypeMarkdown DocumentType = "md"
	DocumentTypePDF      DocumentType = "pdf"
	DocumentTypeDocx     DocumentType = "docx"
	DocumentTypeDoc      DocumentType = "doc"
	DocumentTypeCSV      DocumentType = "csv"
	DocumentTypeTSV      DocumentType = "tsv"
	DocumentTypeXlsx     DocumentType = "xlsx"
	DocumentTypeXls      DocumentType = "xls"
	DocumentTypeURL      DocumentType = "url"
	DocumentTypeWeb      DocumentType = "web"
)

// DocumentStatus represents the ingestion lifecycle of a document.
type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// Document is a source record owned by the external document-management
// collaborator. The ingestion pipeline only mutates Status, ContentHash,
// ChunkCount and Error.
type Document struct {
	ID              string
	KnowledgeBaseID string
	Type            DocumentType
	Name            string
	FilePath        string
	SourceURL       string
	Status          DocumentStatus
	ContentHash     string
	ChunkCount      int
	Error           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NormalizeDocumentType lowercases and trims a type tag.
func NormalizeDocumentType(t string) DocumentType {
	return DocumentType(strings.ToLower(strings.TrimSpace(t)))
}

// IsValidDocumentType checks whether a type tag names a supported format.
func IsValidDocumentType(t DocumentType) bool {
	switch NormalizeDocumentType(string(t)) {
	case DocumentTypeTxt, DocumentTypeText, DocumentTypeMarkdown, "markdown",
		DocumentTypePDF, DocumentTypeDocx, DocumentTypeDoc,
		DocumentTypeCSV, DocumentTypeTSV, DocumentTypeXlsx, DocumentTypeXls,
		DocumentTypeURL, DocumentTypeWeb:
		return true
	}
	return false
}

// isValidDocumentStatus checks if a DocumentStatus is valid
func isValidDocumentStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusPending, DocumentStatusProcessing,
		DocumentStatusCompleted, DocumentStatusFailed:
		return true
	}
	return false
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.KnowledgeBaseID == "" {
		return fmt.Errorf("document KnowledgeBaseID is required")
	}

	if !IsValidDocumentType(d.Type) {
		return fmt.Errorf("document Type is invalid: %s", d.Type)
	}

	if !isValidDocumentStatus(d.Status) {
		return fmt.Errorf("document Status is invalid: %s", d.Status)
	}

	if d.FilePath == "" && d.SourceURL == "" {
		return fmt.Errorf("document must have either FilePath or SourceURL")
	}

	return nil
}
