package redis

import (
	"context"
	"fmt"
	"strings"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const blobKeyPrefix = "huddle:blob:"

// chunkSize is the write granularity used so upload progress can be
// reported on large assets.
const chunkSize = 256 << 10

// BlobStore stores binary assets as a pair of redis string keys per
// path (`<key>:data` and `<key>:type`). The returned URL is the public
// base joined with the path; the gateway serves blobs back out over
// HTTP.
type BlobStore struct {
	client  *redis.Client
	baseURL string
}

func NewBlobStore(client *redis.Client, baseURL string) *BlobStore {
	return &BlobStore{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *BlobStore) key(path string) string {
	return blobKeyPrefix + path
}

func (s *BlobStore) Put(ctx context.Context, path string, data []byte, contentType string, progress ports.ProgressFunc) (string, error) {
	key := s.key(path)
	total := int64(len(data))
	if progress != nil {
		progress(0, total)
	}

	// Stage under a temporary key so a half-written blob never replaces
	// the previous asset, then rename into place.
	staging := key + ":staging"
	if err := s.client.Del(ctx, staging).Err(); err != nil {
		return "", fmt.Errorf("clear staging blob: %w", err)
	}

	for off := 0; off < len(data); off += chunkSize {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}
		if err := s.client.Append(ctx, staging, string(data[off:end])).Err(); err != nil {
			return "", fmt.Errorf("write blob chunk: %w", err)
		}
		if progress != nil {
			progress(int64(end), total)
		}
	}

	pipe := s.client.TxPipeline()
	pipe.Rename(ctx, staging, key+":data")
	pipe.Set(ctx, key+":type", contentType, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("finalize blob: %w", err)
	}

	return s.baseURL + "/" + path, nil
}

func (s *BlobStore) Get(ctx context.Context, path string) (*ports.Blob, error) {
	key := s.key(path)
	data, err := s.client.Get(ctx, key+":data").Bytes()
	if err == redis.Nil {
		return nil, domain.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}

	contentType, err := s.client.Get(ctx, key+":type").Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("read blob content type: %w", err)
	}

	return &ports.Blob{Data: data, ContentType: contentType}, nil
}
