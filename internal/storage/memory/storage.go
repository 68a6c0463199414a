package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/storage"
	apperrors "github.com/amritage/age-fabric-shop-admin-panel/pkg/errors"
)

type fileEntry struct {
	contentType string
	data        []byte
}

// Storage implements storage.Storage in process memory. Staged files are
// lost on restart.
type Storage struct {
	mu    sync.RWMutex
	files map[string]*fileEntry
}

// New creates a new in-memory storage instance.
func New() *Storage {
	return &Storage{files: make(map[string]*fileEntry)}
}

// Upload copies the input into memory.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	data, err := io.ReadAll(input.Data)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", input.Key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[input.Key] = &fileEntry{contentType: input.ContentType, data: data}

	return &storage.UploadResult{Key: input.Key, Size: int64(len(data))}, nil
}

// Open returns a reader over a copy-free view of the stored bytes.
func (s *Storage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.files[key]
	if !ok {
		return nil, apperrors.NotFound("staged file", key)
	}
	return io.NopCloser(bytes.NewReader(entry.data)), nil
}

// Delete removes a file.
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	return nil
}

// Len returns the number of stored files.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
