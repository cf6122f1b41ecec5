package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockObjectGetter is a mock implementation of ObjectGetter
type MockObjectGetter struct {
	mock.Mock
}

func (m *MockObjectGetter) GetObject(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestSourceReader_LocalPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("local content"), 0o644))

	reader := NewSourceReader(nil)
	data, err := reader.ReadFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "local content", string(data))
}

func TestSourceReader_S3Path(t *testing.T) {
	objects := new(MockObjectGetter)
	objects.On("GetObject", mock.Anything, "uploads/doc-1.pdf").Return([]byte("pdf bytes"), nil)

	reader := NewSourceReader(objects)
	data, err := reader.ReadFile(context.Background(), "s3://uploads/doc-1.pdf")

	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
	objects.AssertExpectations(t)
}

func TestSourceReader_MissingLocalFile(t *testing.T) {
	reader := NewSourceReader(nil)
	_, err := reader.ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))

	assert.Error(t, err)
}
