package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	channelListKey  = "huddle:channels"
	channelEventKey = "huddle:channels:events"
)

// ChannelLog keeps the append-only channel log in a redis list and
// fans appends out over pub/sub. Subscribe replays the list before
// switching to live delivery; records straddling that boundary may be
// delivered twice, which the directory absorbs by keying on id.
type ChannelLog struct {
	client *redis.Client
	logger *zap.SugaredLogger
}

func NewChannelLog(client *redis.Client, logger *zap.SugaredLogger) *ChannelLog {
	return &ChannelLog{client: client, logger: logger}
}

func (l *ChannelLog) Append(ctx context.Context, channel *domain.Channel) error {
	data, err := json.Marshal(channel)
	if err != nil {
		return fmt.Errorf("marshal channel record: %w", err)
	}

	pipe := l.client.TxPipeline()
	pipe.RPush(ctx, channelListKey, data)
	pipe.Publish(ctx, channelEventKey, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append channel record: %w", err)
	}
	return nil
}

func (l *ChannelLog) Subscribe(ctx context.Context, handler func(*domain.Channel)) (ports.Subscription, error) {
	// Subscribe before the replay read so no append can fall between
	// the two.
	pubsub := l.client.Subscribe(ctx, channelEventKey)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to channel events: %w", err)
	}

	replay, err := l.client.LRange(ctx, channelListKey, 0, -1).Result()
	if err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("replay channel log: %w", err)
	}

	go func() {
		for _, raw := range replay {
			if ch := l.decode([]byte(raw)); ch != nil {
				handler(ch)
			}
		}
		for msg := range pubsub.Channel() {
			if ch := l.decode([]byte(msg.Payload)); ch != nil {
				handler(ch)
			}
		}
	}()

	return &redisSubscription{pubsub: pubsub}, nil
}

func (l *ChannelLog) decode(data []byte) *domain.Channel {
	var ch domain.Channel
	if err := json.Unmarshal(data, &ch); err != nil {
		l.logger.Warnw("dropping undecodable channel record", "error", err)
		return nil
	}
	return &ch
}

type redisSubscription struct {
	pubsub *redis.PubSub
}

// Close stops delivery; the delivery goroutine drains and exits once
// the pub/sub channel closes.
func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}
