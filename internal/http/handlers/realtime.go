package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/consciousness-backend/internal/http/response"
	"github.com/yungbote/consciousness-backend/internal/platform/apierr"
	"github.com/yungbote/consciousness-backend/internal/platform/ctxutil"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
	"github.com/yungbote/consciousness-backend/internal/realtime"
)

// RealtimeHandler streams a user's analysis_ready notifications over SSE.
type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /analysis/stream
func (h *RealtimeHandler) Stream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondServiceError(c, apierr.Unauthorized("unauthorized", "Not authenticated"))
		return
	}
	client := h.hub.NewSSEClient(rd.UserID)
	h.hub.AddChannel(client, realtime.UserChannel(rd.UserID))
	h.log.Debug("SSE stream open", "user_id", rd.UserID.String(), "client_id", client.ID.String())

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
}
