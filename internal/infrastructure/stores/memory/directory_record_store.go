package memory

import (
	"context"
	"sync"

	"huddle/internal/core/domain"
)

// DirectoryRecordStore is the in-memory user directory.
type DirectoryRecordStore struct {
	mu      sync.RWMutex
	records map[domain.UserID]*domain.DirectoryRecord
}

func NewDirectoryRecordStore() *DirectoryRecordStore {
	return &DirectoryRecordStore{
		records: make(map[domain.UserID]*domain.DirectoryRecord),
	}
}

func (s *DirectoryRecordStore) Update(ctx context.Context, uid domain.UserID, record *domain.DirectoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *record
	s.records[uid] = &stored
	return nil
}

func (s *DirectoryRecordStore) UpdateAvatarURL(ctx context.Context, uid domain.UserID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[uid]
	if !ok {
		// Mirror the remote store: a partial update creates the record.
		s.records[uid] = &domain.DirectoryRecord{AvatarURL: url}
		return nil
	}
	record.AvatarURL = url
	return nil
}

func (s *DirectoryRecordStore) Get(ctx context.Context, uid domain.UserID) (*domain.DirectoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[uid]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	result := *record
	return &result, nil
}
