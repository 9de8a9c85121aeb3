package bus

import (
	"context"

	"github.com/yungbote/consciousness-backend/internal/realtime"
)

// Bus carries SSE messages between processes. Every forwarder sees every
// published message; the hub on the receiving side filters by channel.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
