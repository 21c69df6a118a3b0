package ports

import (
	"context"

	"huddle/internal/core/domain"
)

// Subscription is a live registration with the channel log. Closing it
// stops delivery; records already handed to the handler are unaffected.
type Subscription interface {
	Close() error
}

// ChannelLog is the remote ordered, append-only record source. Subscribe
// replays every record already in the log, in log order, before live
// records; the handler is invoked from a single goroutine so callers
// observe log order. The same record may be delivered more than once
// around the replay/live boundary; consumers key by id.
type ChannelLog interface {
	Append(ctx context.Context, channel *domain.Channel) error
	Subscribe(ctx context.Context, handler func(*domain.Channel)) (Subscription, error)
}

// ProgressFunc receives upload progress. total may be reported before
// any bytes are written.
type ProgressFunc func(written, total int64)

// Blob is stored content plus its media type.
type Blob struct {
	Data        []byte
	ContentType string
}

// BlobStore is content storage addressed by path. Put overwrites any
// existing blob at the path and returns a retrievable URL.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string, progress ProgressFunc) (string, error)
	Get(ctx context.Context, path string) (*Blob, error)
}

// IdentityStore holds account records. Create rejects a display name
// that is already registered.
type IdentityStore interface {
	Create(ctx context.Context, identity *domain.Identity, passwordHash string) error
	Get(ctx context.Context, uid domain.UserID) (*domain.Identity, error)
	GetByName(ctx context.Context, displayName string) (*domain.Identity, string, error)
	UpdateAvatarURL(ctx context.Context, uid domain.UserID, url string) error
	UpdateDisplayName(ctx context.Context, uid domain.UserID, name string) error
}

// DirectoryRecordStore keeps the denormalized per-user profile snapshots.
type DirectoryRecordStore interface {
	Update(ctx context.Context, uid domain.UserID, record *domain.DirectoryRecord) error
	UpdateAvatarURL(ctx context.Context, uid domain.UserID, url string) error
	Get(ctx context.Context, uid domain.UserID) (*domain.DirectoryRecord, error)
}
