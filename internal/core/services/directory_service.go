package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"
	"huddle/pkg/utils"
	"huddle/pkg/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DirectoryConfig tunes directory behavior.
type DirectoryConfig struct {
	// DedupByID treats repeat delivery of a channel id as an idempotent
	// update in first-seen order instead of appending a duplicate entry.
	DedupByID bool
	// OperationTimeout bounds each remote append issued by CreateChannel.
	OperationTimeout time.Duration
}

type directoryService struct {
	log     ports.ChannelLog
	cfg     DirectoryConfig
	logger  *zap.SugaredLogger
	metrics *MetricsService

	mu        sync.RWMutex
	sub       ports.Subscription
	epoch     uint64
	order     []domain.ChannelID
	byID      map[domain.ChannelID]*domain.Channel
	active    domain.ChannelID
	selected  bool
	firstLoad bool
	observers []ports.DirectoryObserver
}

func NewDirectoryService(
	log ports.ChannelLog,
	cfg DirectoryConfig,
	logger *zap.SugaredLogger,
	metrics *MetricsService,
) ports.DirectoryService {
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 10 * time.Second
	}
	return &directoryService{
		log:     log,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		byID:    make(map[domain.ChannelID]*domain.Channel),
	}
}

// Subscribe registers with the channel log and begins materializing the
// directory. It fails if a subscription is already live; reentrant
// subscription from a delivery callback is therefore impossible.
func (s *directoryService) Subscribe(ctx context.Context) error {
	s.mu.Lock()
	if s.sub != nil {
		s.mu.Unlock()
		return domain.ErrAlreadySubscribed
	}
	s.epoch++
	epoch := s.epoch
	s.order = nil
	s.byID = make(map[domain.ChannelID]*domain.Channel)
	s.active = ""
	s.selected = false
	s.firstLoad = true
	s.mu.Unlock()

	sub, err := s.log.Subscribe(ctx, func(ch *domain.Channel) {
		s.applyAppend(epoch, ch)
	})
	if err != nil {
		return fmt.Errorf("subscribe to channel log: %w", err)
	}

	s.mu.Lock()
	if s.epoch != epoch {
		// Unsubscribe raced us; release the registration immediately.
		s.mu.Unlock()
		sub.Close()
		return nil
	}
	s.sub = sub
	s.mu.Unlock()

	s.logger.Infow("directory subscribed", "dedup_by_id", s.cfg.DedupByID)
	return nil
}

// applyAppend folds one delivered record into the directory. Records
// carrying a stale epoch arrive after teardown and are discarded without
// touching state.
func (s *directoryService) applyAppend(epoch uint64, ch *domain.Channel) {
	s.mu.Lock()

	if epoch != s.epoch {
		s.mu.Unlock()
		s.logger.Debugw("discarding delivery after teardown", "channel_id", ch.ID)
		return
	}

	if existing, ok := s.byID[ch.ID]; ok {
		if s.cfg.DedupByID {
			// Idempotent update, first-seen position kept.
			*existing = *ch
			s.metrics.RecordAppend(true)
			s.mu.Unlock()
			return
		}
		s.logger.Warnw("duplicate channel id delivered", "channel_id", ch.ID)
	}

	record := *ch
	s.byID[ch.ID] = &record
	s.order = append(s.order, ch.ID)
	s.metrics.RecordAppend(false)
	s.metrics.SetChannelCount(len(s.order))

	var activated domain.ChannelID
	if s.firstLoad {
		s.active = s.order[0]
		s.selected = true
		s.firstLoad = false
		activated = s.active
		s.metrics.RecordSelection()
	}

	observers := append([]ports.DirectoryObserver(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o.ChannelAdded(&record)
		if activated != "" {
			o.ActiveChanged(activated)
		}
	}
}

// Unsubscribe stops directory mutation. Deliveries already in flight are
// discarded by the epoch guard. The materialized directory stays
// readable but frozen.
func (s *directoryService) Unsubscribe() error {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.epoch++
	s.mu.Unlock()

	if sub == nil {
		return nil
	}
	if err := sub.Close(); err != nil {
		return fmt.Errorf("close log subscription: %w", err)
	}
	s.logger.Info("directory unsubscribed")
	return nil
}

func (s *directoryService) Channels() []*domain.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	channels := make([]*domain.Channel, 0, len(s.order))
	for _, id := range s.order {
		record := *s.byID[id]
		channels = append(channels, &record)
	}
	return channels
}

func (s *directoryService) ActiveChannel() (domain.ChannelID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.selected
}

// CreateChannel validates input, appends a new record to the remote log
// and returns the record it wrote. The local directory is not mutated
// here; the new channel appears asynchronously via the subscription.
func (s *directoryService) CreateChannel(ctx context.Context, name, details string, creator *domain.Identity) (*domain.Channel, error) {
	name = utils.SanitizeString(name)
	details = utils.SanitizeString(details)
	if name == "" {
		return nil, domain.ErrChannelNameRequired
	}
	if details == "" {
		return nil, domain.ErrChannelDetailsRequired
	}
	if err := validation.ValidateChannelName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateChannelDetails(details); err != nil {
		return nil, err
	}

	channel := &domain.Channel{
		ID:      domain.ChannelID(uuid.New().String()),
		Name:    name,
		Details: details,
		CreatedBy: domain.Creator{
			Name:      creator.DisplayName,
			AvatarURL: creator.AvatarURL,
		},
	}

	appendCtx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	if err := s.log.Append(appendCtx, channel); err != nil {
		s.logger.Errorw("channel append failed",
			"channel_name", name,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	s.logger.Infow("channel created",
		"channel_id", channel.ID,
		"channel_name", channel.Name,
		"channel_details", utils.Truncate(channel.Details, 64),
		"created_by", creator.UID,
	)
	return channel, nil
}

// SelectChannel marks the given channel active. Idempotent when the
// channel is already active. Safe to call from a delivery callback.
func (s *directoryService) SelectChannel(id domain.ChannelID) error {
	s.mu.Lock()

	if _, ok := s.byID[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrChannelNotFound, id)
	}
	if s.selected && s.active == id {
		s.mu.Unlock()
		return nil
	}
	s.active = id
	s.selected = true
	s.metrics.RecordSelection()

	observers := append([]ports.DirectoryObserver(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o.ActiveChanged(id)
	}
	return nil
}

func (s *directoryService) AddObserver(observer ports.DirectoryObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}
