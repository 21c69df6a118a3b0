package services

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"
	"huddle/pkg/tracing"

	"go.uber.org/zap"
)

// PipelineConfig tunes the avatar pipeline.
type PipelineConfig struct {
	// BlobPathPrefix is joined with the target uid to form the upload
	// path, so a re-upload for the same user overwrites the previous
	// asset instead of orphaning it.
	BlobPathPrefix string
	// ContentType of the encoded avatar asset.
	ContentType string
	// OperationTimeout bounds each remote call issued by Commit.
	OperationTimeout time.Duration
}

// avatarPipeline drives raw image -> preview -> crop -> upload -> dual
// write. The upload and the identity write gate success; the directory
// record write is fired independently and only reported.
type avatarPipeline struct {
	blobs   ports.BlobStore
	ids     ports.IdentityStore
	records ports.DirectoryRecordStore
	decoder ports.ImageDecoder
	render  ports.CropRenderer
	cfg     PipelineConfig
	logger  *zap.SugaredLogger
	metrics *MetricsService

	mu      sync.Mutex
	stage   domain.PipelineStage
	gen     uint64
	preview image.Image
	asset   *domain.BinaryAsset
	url     string

	written atomic.Int64
	total   atomic.Int64
}

func NewAvatarPipeline(
	blobs ports.BlobStore,
	ids ports.IdentityStore,
	records ports.DirectoryRecordStore,
	decoder ports.ImageDecoder,
	render ports.CropRenderer,
	cfg PipelineConfig,
	logger *zap.SugaredLogger,
	metrics *MetricsService,
) ports.ProfilePipeline {
	if cfg.BlobPathPrefix == "" {
		cfg.BlobPathPrefix = "avatars/user"
	}
	if cfg.ContentType == "" {
		cfg.ContentType = "image/jpeg"
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 30 * time.Second
	}
	return &avatarPipeline{
		blobs:   blobs,
		ids:     ids,
		records: records,
		decoder: decoder,
		render:  render,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		stage:   domain.StageIdle,
	}
}

// LoadPreview decodes an uploaded file into the preview. Empty input is
// a no-op. Decode failure is reported before any state change; the
// pipeline stays where it was.
func (p *avatarPipeline) LoadPreview(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	img, err := p.decoder.Decode(data)
	if err != nil {
		p.metrics.RecordDecodeFailure()
		p.logger.Warnw("avatar decode failed", "bytes", len(data), "error", err)
		return fmt.Errorf("%w: %v", domain.ErrDecodeFailed, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.preview = img
	p.asset = nil
	p.stage = domain.StagePreviewLoaded
	return nil
}

// CropPreview renders the selected region of the preview to the pending
// asset. Local rendering only; repeatable before commit, each call
// replacing the pending asset. Requires a loaded preview.
func (p *avatarPipeline) CropPreview(ctx context.Context, region domain.CropRegion) error {
	p.mu.Lock()
	if p.stage != domain.StagePreviewLoaded && p.stage != domain.StageCropped {
		p.mu.Unlock()
		return domain.ErrPipelineStage
	}
	preview := p.preview
	p.mu.Unlock()

	asset, err := p.render.Render(preview, region)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDecodeFailed, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.asset = asset
	p.stage = domain.StageCropped
	return nil
}

// Commit uploads the pending asset and issues the two independent
// record writes. Success is defined by the identity write alone; a
// directory record failure is carried in the result and logged, never
// retried or rolled back. Upload or identity failure parks the pipeline
// back at Cropped so Commit can be retried without re-cropping.
func (p *avatarPipeline) Commit(ctx context.Context, target domain.UserID) (*domain.CommitResult, error) {
	p.mu.Lock()
	if p.stage != domain.StageCropped {
		p.mu.Unlock()
		return nil, domain.ErrPipelineStage
	}
	p.stage = domain.StageUploading
	p.gen++
	gen := p.gen
	asset := p.asset
	p.mu.Unlock()

	started := time.Now()
	ctx, span := tracing.StartSpan(ctx, "avatar.commit")
	defer span.End()

	path := fmt.Sprintf("%s/%s", p.cfg.BlobPathPrefix, target)
	tracing.AddSpanAttributes(ctx,
		tracing.UserIDKey.String(string(target)),
		tracing.BlobPathKey.String(path),
	)
	p.written.Store(0)
	p.total.Store(int64(len(asset.Data)))

	uploadCtx, cancel := context.WithTimeout(ctx, p.cfg.OperationTimeout)
	url, err := p.blobs.Put(uploadCtx, path, asset.Data, asset.ContentType, func(written, total int64) {
		p.written.Store(written)
		p.total.Store(total)
	})
	cancel()
	if err != nil {
		p.metrics.RecordUploadFailure()
		p.logger.Errorw("avatar upload failed", "path", path, "error", err)
		p.park(gen, domain.StageCropped)
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	// Two independent writes. Both are always issued; neither outcome
	// feeds into the other.
	writeCtx, cancel := context.WithTimeout(ctx, p.cfg.OperationTimeout)
	identityErr := p.ids.UpdateAvatarURL(writeCtx, target, url)
	cancel()

	recordCtx, cancel := context.WithTimeout(ctx, p.cfg.OperationTimeout)
	recordErr := p.records.UpdateAvatarURL(recordCtx, target, url)
	cancel()

	if recordErr != nil {
		p.metrics.RecordDualWriteFailure()
		p.logger.Warnw("directory record avatar update failed",
			"uid", target,
			"url", url,
			"error", recordErr,
		)
	}

	if identityErr != nil {
		p.logger.Errorw("identity avatar update failed", "uid", target, "error", identityErr)
		p.park(gen, domain.StageCropped)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, identityErr)
	}

	p.metrics.RecordCommit(time.Since(started))
	p.logger.Infow("avatar committed", "uid", target, "url", url)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen == p.gen {
		// A Reset during the upload discards the transition; the remote
		// writes stand, only local state is gone.
		p.stage = domain.StageCommitted
		p.url = url
	}
	return &domain.CommitResult{AvatarURL: url, RecordErr: recordErr}, nil
}

// park moves the pipeline to the given stage unless it was reset while
// the remote call was in flight.
func (p *avatarPipeline) park(gen uint64, stage domain.PipelineStage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen == p.gen {
		p.stage = stage
	}
}

func (p *avatarPipeline) Stage() domain.PipelineStage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

func (p *avatarPipeline) Progress() domain.UploadProgress {
	return domain.UploadProgress{
		Written: p.written.Load(),
		Total:   p.total.Load(),
	}
}

// Reset discards all transient pipeline state. In-flight commits finish
// remotely but never touch the pipeline afterwards.
func (p *avatarPipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.stage = domain.StageIdle
	p.preview = nil
	p.asset = nil
	p.url = ""
	p.written.Store(0)
	p.total.Store(0)
}
