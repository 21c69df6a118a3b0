package memory

import (
	"context"
	"sync"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"
)

// ChannelLog is an in-process append-only log with replay-on-subscribe
// semantics matching the remote log: each subscriber sees every record
// already appended, then live records, all in log order.
type ChannelLog struct {
	mu      sync.Mutex
	records []*domain.Channel
	subs    map[*subscription]struct{}
	buffer  int
}

func NewChannelLog(buffer int) *ChannelLog {
	if buffer <= 0 {
		buffer = 128
	}
	return &ChannelLog{
		subs:   make(map[*subscription]struct{}),
		buffer: buffer,
	}
}

func (l *ChannelLog) Append(ctx context.Context, channel *domain.Channel) error {
	record := *channel

	// Enqueue while holding the lock so concurrent appends reach every
	// subscriber in log order. Subscribers drain their live channel
	// without the lock, and Close signals done before taking it, so a
	// full buffer cannot deadlock here.
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, &record)
	for sub := range l.subs {
		sub.deliver(&record)
	}
	return nil
}

func (l *ChannelLog) Subscribe(ctx context.Context, handler func(*domain.Channel)) (ports.Subscription, error) {
	sub := &subscription{
		log:  l,
		live: make(chan *domain.Channel, l.buffer),
		done: make(chan struct{}),
	}

	// Snapshot and registration happen under one lock acquisition so no
	// append can fall between replay and live delivery.
	l.mu.Lock()
	replay := make([]*domain.Channel, len(l.records))
	copy(replay, l.records)
	l.subs[sub] = struct{}{}
	l.mu.Unlock()

	go func() {
		for _, record := range replay {
			select {
			case <-sub.done:
				return
			default:
			}
			handler(record)
		}
		for {
			select {
			case <-sub.done:
				return
			case record := <-sub.live:
				handler(record)
			}
		}
	}()

	return sub, nil
}

// Len reports the number of appended records.
func (l *ChannelLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

type subscription struct {
	log  *ChannelLog
	live chan *domain.Channel
	done chan struct{}
	once sync.Once
}

func (s *subscription) deliver(record *domain.Channel) {
	select {
	case s.live <- record:
	case <-s.done:
	}
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.log.mu.Lock()
		delete(s.log.subs, s)
		s.log.mu.Unlock()
	})
	return nil
}
