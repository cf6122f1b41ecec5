package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDocumentType(t *testing.T) {
	assert.Equal(t, DocumentTypePDF, NormalizeDocumentType("PDF"))
	assert.Equal(t, DocumentTypeTxt, NormalizeDocumentType("  txt "))
	assert.Equal(t, DocumentTypeXlsx, NormalizeDocumentType("XLSX"))
	assert.Equal(t, DocumentType("unknown"), NormalizeDocumentType("unknown"))
}

func TestIsValidDocumentType(t *testing.T) {
	valid := []DocumentType{
		DocumentTypeTxt, DocumentTypeText, DocumentTypeMarkdown, "markdown",
		DocumentTypePDF, DocumentTypeDocx, DocumentTypeDoc,
		DocumentTypeCSV, DocumentTypeTSV, DocumentTypeXlsx, DocumentTypeXls,
		DocumentTypeURL, DocumentTypeWeb,
	}
	for _, dt := range valid {
		assert.True(t, IsValidDocumentType(dt), "expected %s to be valid", dt)
	}

	assert.True(t, IsValidDocumentType("PDF"), "mixed case should normalize")
	assert.False(t, IsValidDocumentType("exe"))
	assert.False(t, IsValidDocumentType(""))
}

func TestValidateDocument(t *testing.T) {
	base := func() *Document {
		return &Document{
			ID:              "doc1",
			KnowledgeBaseID: "kb1",
			Type:            DocumentTypeTxt,
			Name:            "notes.txt",
			FilePath:        "/tmp/notes.txt",
			Status:          DocumentStatusPending,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Document)
		wantErr string
	}{
		{
			name:   "valid with file path",
			mutate: func(d *Document) {},
		},
		{
			name: "valid with source url only",
			mutate: func(d *Document) {
				d.FilePath = ""
				d.SourceURL = "https://example.com/page"
				d.Type = DocumentTypeURL
			},
		},
		{
			name:    "missing ID",
			mutate:  func(d *Document) { d.ID = "" },
			wantErr: "document ID is required",
		},
		{
			name:    "missing knowledge base",
			mutate:  func(d *Document) { d.KnowledgeBaseID = "" },
			wantErr: "document KnowledgeBaseID is required",
		},
		{
			name:    "invalid type",
			mutate:  func(d *Document) { d.Type = "exe" },
			wantErr: "document Type is invalid",
		},
		{
			name:    "invalid status",
			mutate:  func(d *Document) { d.Status = "archived" },
			wantErr: "document Status is invalid",
		},
		{
			name: "no source at all",
			mutate: func(d *Document) {
				d.FilePath = ""
				d.SourceURL = ""
			},
			wantErr: "document must have either FilePath or SourceURL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := base()
			tt.mutate(doc)
			err := ValidateDocument(doc)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}

	assert.ErrorContains(t, ValidateDocument(nil), "document cannot be nil")
}
