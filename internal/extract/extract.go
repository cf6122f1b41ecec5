// Package extract converts heterogeneous document sources into normalized
// plain text ready for chunking and embedding.
package extract

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/botweaver/knowledge/internal/domain"
)

// FileReader loads raw document bytes from a storage location. The default
// implementation reads from local disk; an S3-backed reader is wired in when
// documents live in object storage.
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// HTTPDoer issues HTTP requests for url/web documents.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DiskReader reads document files from the local filesystem.
type DiskReader struct{}

func (DiskReader) ReadFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Service extracts normalized text from documents, dispatching on the
// document's type tag.
type Service struct {
	files  FileReader
	client HTTPDoer
}

// NewService creates an extraction service with the default local file
// reader and HTTP client.
func NewService() *Service {
	return NewServiceWith(DiskReader{}, &http.Client{Timeout: 30 * time.Second})
}

// NewServiceWith creates an extraction service with explicit collaborators.
func NewServiceWith(files FileReader, client HTTPDoer) *Service {
	if files == nil {
		files = DiskReader{}
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Service{files: files, client: client}
}

// Extract produces plain text for a document. The type tag is matched
// case-insensitively; unsupported tags fail with ErrUnsupportedType.
func (s *Service) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	text, err := s.extractRaw(ctx, doc)
	if err != nil {
		return "", err
	}
	return NormalizeProductTable(text), nil
}

func (s *Service) extractRaw(ctx context.Context, doc *domain.Document) (string, error) {
	switch domain.NormalizeDocumentType(string(doc.Type)) {
	case domain.DocumentTypeTxt, domain.DocumentTypeText:
		data, err := s.readFile(ctx, doc)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case domain.DocumentTypeMarkdown, "markdown":
		data, err := s.readFile(ctx, doc)
		if err != nil {
			return "", err
		}
		return StripMarkdown(string(data)), nil
	case domain.DocumentTypeCSV:
		data, err := s.readFile(ctx, doc)
		if err != nil {
			return "", err
		}
		return RenderDelimited(data, ',')
	case domain.DocumentTypeTSV:
		data, err := s.readFile(ctx, doc)
		if err != nil {
			return "", err
		}
		return RenderDelimited(data, '\t')
	case domain.DocumentTypePDF:
		data, err := s.readFile(ctx, doc)
		if err != nil {
			return "", err
		}
		return extractPDF(data)
	case domain.DocumentTypeDocx, domain.DocumentTypeDoc:
		data, err := s.readFile(ctx, doc)
		if err != nil {
			return "", err
		}
		return extractWord(data)
	case domain.DocumentTypeXlsx:
		data, err := s.readFile(ctx, doc)
		if err != nil {
			return "", err
		}
		return extractXlsx(data)
	case domain.DocumentTypeXls:
		data, err := s.readFile(ctx, doc)
		if err != nil {
			return "", err
		}
		return extractXls(data)
	case domain.DocumentTypeURL, domain.DocumentTypeWeb:
		if strings.TrimSpace(doc.SourceURL) == "" {
			return "", domain.ErrMissingSource
		}
		return s.fetchPage(ctx, doc.SourceURL)
	default:
		return "", domain.ErrUnsupportedType
	}
}

func (s *Service) readFile(ctx context.Context, doc *domain.Document) ([]byte, error) {
	if strings.TrimSpace(doc.FilePath) == "" {
		return nil, domain.ErrMissingPath
	}
	return s.files.ReadFile(ctx, doc.FilePath)
}
