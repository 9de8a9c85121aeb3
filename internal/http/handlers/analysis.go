package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/consciousness-backend/internal/http/response"
	"github.com/yungbote/consciousness-backend/internal/services"
)

type AnalysisHandler struct {
	analysisService services.AnalysisService
}

func NewAnalysisHandler(analysisService services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// GET /analysis/latest
// analysis is null while none has been generated yet; clients poll this.
func (ah *AnalysisHandler) Latest(c *gin.Context) {
	analysis, err := ah.analysisService.Latest(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"analysis": analysis})
}

// GET /analysis/all?limit=30&offset=0
func (ah *AnalysisHandler) All(c *gin.Context) {
	limit, offset, err := pageParams(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	analyses, err := ah.analysisService.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"analyses": analyses})
}

// GET /analysis/:reflectionId
func (ah *AnalysisHandler) ForReflection(c *gin.Context) {
	id, err := uuid.Parse(c.Param("reflectionId"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "reflection_not_found", errReflectionNotFound)
		return
	}
	analysis, err := ah.analysisService.ForReflection(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"analysis": analysis})
}
