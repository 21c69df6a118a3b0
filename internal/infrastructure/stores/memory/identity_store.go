package memory

import (
	"context"
	"sync"

	"huddle/internal/core/domain"
)

type identityEntry struct {
	identity     domain.Identity
	passwordHash string
}

// IdentityStore is the in-memory account store.
type IdentityStore struct {
	mu     sync.RWMutex
	byUID  map[domain.UserID]*identityEntry
	byName map[string]domain.UserID
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		byUID:  make(map[domain.UserID]*identityEntry),
		byName: make(map[string]domain.UserID),
	}
}

func (s *IdentityStore) Create(ctx context.Context, identity *domain.Identity, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byName[identity.DisplayName]; taken {
		return domain.ErrNameTaken
	}
	s.byUID[identity.UID] = &identityEntry{identity: *identity, passwordHash: passwordHash}
	s.byName[identity.DisplayName] = identity.UID
	return nil
}

func (s *IdentityStore) Get(ctx context.Context, uid domain.UserID) (*domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.byUID[uid]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	identity := entry.identity
	return &identity, nil
}

func (s *IdentityStore) GetByName(ctx context.Context, displayName string) (*domain.Identity, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uid, ok := s.byName[displayName]
	if !ok {
		return nil, "", domain.ErrIdentityNotFound
	}
	entry := s.byUID[uid]
	identity := entry.identity
	return &identity, entry.passwordHash, nil
}

func (s *IdentityStore) UpdateAvatarURL(ctx context.Context, uid domain.UserID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byUID[uid]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	entry.identity.AvatarURL = url
	return nil
}

func (s *IdentityStore) UpdateDisplayName(ctx context.Context, uid domain.UserID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byUID[uid]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	if existing, taken := s.byName[name]; taken && existing != uid {
		return domain.ErrNameTaken
	}
	delete(s.byName, entry.identity.DisplayName)
	entry.identity.DisplayName = name
	s.byName[name] = uid
	return nil
}
