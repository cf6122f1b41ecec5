package storage

import (
	"context"
	"os"
	"strings"
)

// ObjectGetter downloads a stored object by key.
type ObjectGetter interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// SourceReader resolves a document's file path to its bytes. Paths of the
// form "s3://<key>" are fetched from object storage; everything else is
// read from the local filesystem. A nil objects client restricts the
// reader to local paths.
type SourceReader struct {
	objects ObjectGetter
}

// NewSourceReader creates a new SourceReader instance
func NewSourceReader(objects ObjectGetter) *SourceReader {
	return &SourceReader{objects: objects}
}

const s3Scheme = "s3://"

// ReadFile returns the contents of a local or object-storage path.
func (r *SourceReader) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if key, ok := strings.CutPrefix(path, s3Scheme); ok && r.objects != nil {
		return r.objects.GetObject(ctx, key)
	}
	return os.ReadFile(path)
}
