package ports

import (
	"context"

	"huddle/internal/core/domain"
)

// DirectoryObserver is notified of directory changes. Callbacks run on
// the delivery goroutine and must not block.
type DirectoryObserver interface {
	ChannelAdded(channel *domain.Channel)
	ActiveChanged(id domain.ChannelID)
}

// DirectoryService materializes the channel directory from the remote
// log and arbitrates the active channel.
type DirectoryService interface {
	Subscribe(ctx context.Context) error
	Unsubscribe() error
	Channels() []*domain.Channel
	ActiveChannel() (domain.ChannelID, bool)
	CreateChannel(ctx context.Context, name, details string, creator *domain.Identity) (*domain.Channel, error)
	SelectChannel(id domain.ChannelID) error
	AddObserver(observer DirectoryObserver)
}

// ProfilePipeline drives one avatar change end to end: decode, crop,
// upload, dual write. One pipeline per UI session.
type ProfilePipeline interface {
	LoadPreview(ctx context.Context, data []byte) error
	CropPreview(ctx context.Context, region domain.CropRegion) error
	Commit(ctx context.Context, target domain.UserID) (*domain.CommitResult, error)
	Stage() domain.PipelineStage
	Progress() domain.UploadProgress
	Reset()
}

// SessionService issues and validates session tokens and bootstraps new
// accounts.
type SessionService interface {
	Register(ctx context.Context, displayName, password string) (*domain.Identity, string, error)
	Login(ctx context.Context, displayName, password string) (*domain.Identity, string, error)
	ValidateToken(token string) (domain.UserID, string, error)
}
