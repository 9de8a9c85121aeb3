package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/consciousness-backend/internal/http/response"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response.RespondOK(c, gin.H{"status": "ok", "message": "Consciousness App API is running"})
}
