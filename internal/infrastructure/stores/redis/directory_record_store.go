package redis

import (
	"context"
	"fmt"

	"huddle/internal/core/domain"

	"github.com/redis/go-redis/v9"
)

const recordKeyPrefix = "huddle:user:"

// DirectoryRecordStore keeps the denormalized per-user profile
// snapshots in redis hashes keyed by uid.
type DirectoryRecordStore struct {
	client *redis.Client
}

func NewDirectoryRecordStore(client *redis.Client) *DirectoryRecordStore {
	return &DirectoryRecordStore{client: client}
}

func (s *DirectoryRecordStore) key(uid domain.UserID) string {
	return recordKeyPrefix + string(uid)
}

func (s *DirectoryRecordStore) Update(ctx context.Context, uid domain.UserID, record *domain.DirectoryRecord) error {
	fields := map[string]interface{}{
		"name":   record.Name,
		"avatar": record.AvatarURL,
	}
	if err := s.client.HSet(ctx, s.key(uid), fields).Err(); err != nil {
		return fmt.Errorf("write directory record: %w", err)
	}
	return nil
}

func (s *DirectoryRecordStore) UpdateAvatarURL(ctx context.Context, uid domain.UserID, url string) error {
	if err := s.client.HSet(ctx, s.key(uid), "avatar", url).Err(); err != nil {
		return fmt.Errorf("update directory record avatar: %w", err)
	}
	return nil
}

func (s *DirectoryRecordStore) Get(ctx context.Context, uid domain.UserID) (*domain.DirectoryRecord, error) {
	fields, err := s.client.HGetAll(ctx, s.key(uid)).Result()
	if err != nil {
		return nil, fmt.Errorf("read directory record: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrRecordNotFound
	}
	return &domain.DirectoryRecord{
		Name:      fields["name"],
		AvatarURL: fields["avatar"],
	}, nil
}
