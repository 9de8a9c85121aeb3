package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/consciousness-backend/internal/realtime"
)

// MemoryBus delivers messages to forwarders in the same process. Used when no
// Redis is configured, which limits streaming to single-instance deployments.
type MemoryBus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]func(realtime.SSEMessage)
	closed   bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[int]func(realtime.SSEMessage))}
}

func (b *MemoryBus) Publish(_ context.Context, msg realtime.SSEMessage) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("memory SSE bus closed")
	}
	for _, h := range b.handlers {
		h(msg)
	}
	return nil
}

// StartForwarder registers onMsg until ctx ends or the bus is closed.
func (b *MemoryBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("memory SSE bus closed")
	}
	id := b.nextID
	b.nextID++
	b.handlers[id] = onMsg
	b.mu.Unlock()

	context.AfterFunc(ctx, func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	})
	return nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = make(map[int]func(realtime.SSEMessage))
	return nil
}
