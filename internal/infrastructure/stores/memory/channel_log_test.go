package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"huddle/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

// collector accumulates delivered records until the expected count
// arrives.
type collector struct {
	mu   sync.Mutex
	got  []domain.ChannelID
	cond chan struct{}
}

func newCollector() *collector {
	return &collector{cond: make(chan struct{}, 64)}
}

func (c *collector) handle(ch *domain.Channel) {
	c.mu.Lock()
	c.got = append(c.got, ch.ID)
	c.mu.Unlock()
	c.cond <- struct{}{}
}

func (c *collector) waitFor(t *testing.T, n int) []domain.ChannelID {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		c.mu.Lock()
		if len(c.got) >= n {
			ids := append([]domain.ChannelID(nil), c.got...)
			c.mu.Unlock()
			return ids
		}
		c.mu.Unlock()

		select {
		case <-c.cond:
		case <-deadline:
			t.Fatalf("timed out waiting for %d deliveries", n)
		}
	}
}

func record(id string) *domain.Channel {
	return &domain.Channel{ID: domain.ChannelID(id), Name: id, Details: id}
}

func TestChannelLog_ReplayThenLive(t *testing.T) {
	log := NewChannelLog(16)
	ctx := context.Background()

	assert.NoError(t, log.Append(ctx, record("c1")))
	assert.NoError(t, log.Append(ctx, record("c2")))

	c := newCollector()
	sub, err := log.Subscribe(ctx, c.handle)
	assert.NoError(t, err)
	defer sub.Close()

	assert.NoError(t, log.Append(ctx, record("c3")))

	ids := c.waitFor(t, 3)
	assert.Equal(t, []domain.ChannelID{"c1", "c2", "c3"}, ids)
	assert.Equal(t, 3, log.Len())
}

func TestChannelLog_MultipleSubscribersSeeEveryRecord(t *testing.T) {
	log := NewChannelLog(16)
	ctx := context.Background()

	first := newCollector()
	subA, err := log.Subscribe(ctx, first.handle)
	assert.NoError(t, err)
	defer subA.Close()

	assert.NoError(t, log.Append(ctx, record("c1")))

	second := newCollector()
	subB, err := log.Subscribe(ctx, second.handle)
	assert.NoError(t, err)
	defer subB.Close()

	assert.NoError(t, log.Append(ctx, record("c2")))

	assert.Equal(t, []domain.ChannelID{"c1", "c2"}, first.waitFor(t, 2))
	assert.Equal(t, []domain.ChannelID{"c1", "c2"}, second.waitFor(t, 2))
}

func TestChannelLog_CloseStopsDelivery(t *testing.T) {
	log := NewChannelLog(16)
	ctx := context.Background()

	c := newCollector()
	sub, err := log.Subscribe(ctx, c.handle)
	assert.NoError(t, err)

	assert.NoError(t, log.Append(ctx, record("c1")))
	c.waitFor(t, 1)

	assert.NoError(t, sub.Close())
	assert.NoError(t, sub.Close(), "close is idempotent")

	// Appends after close still succeed, the closed subscriber just
	// stops receiving.
	assert.NoError(t, log.Append(ctx, record("c2")))
	assert.Equal(t, 2, log.Len())

	time.Sleep(50 * time.Millisecond)
	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, []domain.ChannelID{"c1"}, c.got)
}

func TestChannelLog_ConcurrentAppendsPreserveLogOrder(t *testing.T) {
	log := NewChannelLog(256)
	ctx := context.Background()

	live := newCollector()
	sub, err := log.Subscribe(ctx, live.handle)
	assert.NoError(t, err)
	defer sub.Close()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, log.Append(ctx, record(fmt.Sprintf("c%03d", i))))
		}(i)
	}
	wg.Wait()

	got := live.waitFor(t, n)

	// A fresh subscriber replays the log in its stored order; live
	// delivery must have matched it exactly.
	replay := newCollector()
	sub2, err := log.Subscribe(ctx, replay.handle)
	assert.NoError(t, err)
	defer sub2.Close()

	assert.Equal(t, replay.waitFor(t, n), got)
}

func TestChannelLog_AppendCopiesRecord(t *testing.T) {
	log := NewChannelLog(16)
	ctx := context.Background()

	original := record("c1")
	assert.NoError(t, log.Append(ctx, original))
	original.Name = "mutated"

	c := newCollector()
	sub, err := log.Subscribe(ctx, func(ch *domain.Channel) {
		assert.Equal(t, "c1", ch.Name, "log must hold its own copy")
		c.handle(ch)
	})
	assert.NoError(t, err)
	defer sub.Close()

	c.waitFor(t, 1)
}
