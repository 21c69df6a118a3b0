package redis

import (
	"context"
	"fmt"

	"huddle/internal/core/domain"

	"github.com/redis/go-redis/v9"
)

const (
	identityKeyPrefix = "huddle:identity:"
	identityNameIndex = "huddle:identity:names"
)

// IdentityStore keeps account records in redis hashes plus a
// name-to-uid index for login.
type IdentityStore struct {
	client *redis.Client
}

func NewIdentityStore(client *redis.Client) *IdentityStore {
	return &IdentityStore{client: client}
}

func (s *IdentityStore) key(uid domain.UserID) string {
	return identityKeyPrefix + string(uid)
}

func (s *IdentityStore) Create(ctx context.Context, identity *domain.Identity, passwordHash string) error {
	// Claim the name first; HSetNX makes the claim atomic.
	claimed, err := s.client.HSetNX(ctx, identityNameIndex, identity.DisplayName, string(identity.UID)).Result()
	if err != nil {
		return fmt.Errorf("claim display name: %w", err)
	}
	if !claimed {
		return domain.ErrNameTaken
	}

	fields := map[string]interface{}{
		"displayName":  identity.DisplayName,
		"avatarUrl":    identity.AvatarURL,
		"passwordHash": passwordHash,
	}
	if err := s.client.HSet(ctx, s.key(identity.UID), fields).Err(); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

func (s *IdentityStore) Get(ctx context.Context, uid domain.UserID) (*domain.Identity, error) {
	fields, err := s.client.HGetAll(ctx, s.key(uid)).Result()
	if err != nil {
		return nil, fmt.Errorf("read identity: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrIdentityNotFound
	}
	return &domain.Identity{
		UID:         uid,
		DisplayName: fields["displayName"],
		AvatarURL:   fields["avatarUrl"],
	}, nil
}

func (s *IdentityStore) GetByName(ctx context.Context, displayName string) (*domain.Identity, string, error) {
	uid, err := s.client.HGet(ctx, identityNameIndex, displayName).Result()
	if err == redis.Nil {
		return nil, "", domain.ErrIdentityNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("look up display name: %w", err)
	}

	fields, err := s.client.HGetAll(ctx, s.key(domain.UserID(uid))).Result()
	if err != nil {
		return nil, "", fmt.Errorf("read identity: %w", err)
	}
	if len(fields) == 0 {
		return nil, "", domain.ErrIdentityNotFound
	}

	identity := &domain.Identity{
		UID:         domain.UserID(uid),
		DisplayName: fields["displayName"],
		AvatarURL:   fields["avatarUrl"],
	}
	return identity, fields["passwordHash"], nil
}

func (s *IdentityStore) UpdateAvatarURL(ctx context.Context, uid domain.UserID, url string) error {
	exists, err := s.client.Exists(ctx, s.key(uid)).Result()
	if err != nil {
		return fmt.Errorf("check identity: %w", err)
	}
	if exists == 0 {
		return domain.ErrIdentityNotFound
	}
	if err := s.client.HSet(ctx, s.key(uid), "avatarUrl", url).Err(); err != nil {
		return fmt.Errorf("update identity avatar: %w", err)
	}
	return nil
}

func (s *IdentityStore) UpdateDisplayName(ctx context.Context, uid domain.UserID, name string) error {
	identity, err := s.Get(ctx, uid)
	if err != nil {
		return err
	}

	claimed, err := s.client.HSetNX(ctx, identityNameIndex, name, string(uid)).Result()
	if err != nil {
		return fmt.Errorf("claim display name: %w", err)
	}
	if !claimed {
		return domain.ErrNameTaken
	}

	pipe := s.client.TxPipeline()
	pipe.HDel(ctx, identityNameIndex, identity.DisplayName)
	pipe.HSet(ctx, s.key(uid), "displayName", name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	return nil
}
