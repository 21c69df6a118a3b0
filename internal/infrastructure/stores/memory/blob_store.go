package memory

import (
	"context"
	"strings"
	"sync"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"
)

// BlobStore keeps binary assets in a map, for tests and single-node
// deployments without redis.
type BlobStore struct {
	mu      sync.RWMutex
	blobs   map[string]ports.Blob
	baseURL string
}

func NewBlobStore(baseURL string) *BlobStore {
	return &BlobStore{
		blobs:   make(map[string]ports.Blob),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *BlobStore) Put(ctx context.Context, path string, data []byte, contentType string, progress ports.ProgressFunc) (string, error) {
	stored := make([]byte, len(data))
	copy(stored, data)

	total := int64(len(data))
	if progress != nil {
		progress(0, total)
	}

	s.mu.Lock()
	s.blobs[path] = ports.Blob{Data: stored, ContentType: contentType}
	s.mu.Unlock()

	if progress != nil {
		progress(total, total)
	}
	return s.baseURL + "/" + path, nil
}

func (s *BlobStore) Get(ctx context.Context, path string) (*ports.Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[path]
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return &ports.Blob{Data: blob.Data, ContentType: blob.ContentType}, nil
}
