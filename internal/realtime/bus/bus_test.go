package bus

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/consciousness-backend/internal/platform/logger"
	"github.com/yungbote/consciousness-backend/internal/realtime"
)

func TestMemoryBusForwardsUntilContextEnds(t *testing.T) {
	b := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())

	got := make(chan realtime.SSEMessage, 4)
	require.NoError(t, b.StartForwarder(ctx, func(m realtime.SSEMessage) { got <- m }))

	msg := realtime.SSEMessage{Channel: "user:1", Event: realtime.SSEEventAnalysisReady}
	require.NoError(t, b.Publish(context.Background(), msg))
	assert.Equal(t, msg, <-got)

	cancel()
	require.Eventually(t, func() bool {
		b.mu.RLock()
		defer b.mu.RUnlock()
		return len(b.handlers) == 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, b.Publish(context.Background(), msg))
	assert.Len(t, got, 0)
}

func TestMemoryBusRejectsAfterClose(t *testing.T) {
	b := NewMemoryBus()
	require.NoError(t, b.Close())
	assert.Error(t, b.Publish(context.Background(), realtime.SSEMessage{}))
	assert.Error(t, b.StartForwarder(context.Background(), func(realtime.SSEMessage) {}))
}

func TestNewRedisBusRequiresAddr(t *testing.T) {
	_, err := NewRedisBus(context.Background(), logger.NewNop(), RedisConfig{})
	assert.ErrorContains(t, err, "REDIS_ADDR")
}

func TestRedisBusRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	b, err := NewRedisBus(ctx, logger.NewNop(), RedisConfig{Addr: addr, Channel: "test:" + t.Name()})
	require.NoError(t, err)
	defer b.Close()

	got := make(chan realtime.SSEMessage, 1)
	require.NoError(t, b.StartForwarder(ctx, func(m realtime.SSEMessage) { got <- m }))

	msg := realtime.SSEMessage{Channel: "user:abc", Event: realtime.SSEEventAnalysisReady}
	require.NoError(t, b.Publish(ctx, msg))

	select {
	case m := <-got:
		assert.Equal(t, msg.Channel, m.Channel)
		assert.Equal(t, msg.Event, m.Event)
	case <-ctx.Done():
		t.Fatal("timed out waiting for redis message")
	}
}
