package realtime

import "github.com/google/uuid"

type SSEEvent string

const (
	SSEEventAnalysisReady SSEEvent = "analysis_ready"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the channel carrying events for a single user's streams.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}
