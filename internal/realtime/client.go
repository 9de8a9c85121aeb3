package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

// SSEClient is one open stream. Outbound is closed by SSEHub.CloseClient.
type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	Logger   *logger.Logger

	done      chan struct{}
	closeOnce sync.Once
}
