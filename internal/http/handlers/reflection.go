package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/consciousness-backend/internal/http/response"
	"github.com/yungbote/consciousness-backend/internal/platform/apierr"
	"github.com/yungbote/consciousness-backend/internal/services"
)

type ReflectionHandler struct {
	reflectionService services.ReflectionService
}

func NewReflectionHandler(reflectionService services.ReflectionService) *ReflectionHandler {
	return &ReflectionHandler{reflectionService: reflectionService}
}

// POST /reflections
// Responds as soon as the reflection is stored; analysis runs in the background.
func (rh *ReflectionHandler) Create(c *gin.Context) {
	var req services.ReflectionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	reflection, err := rh.reflectionService.CreateReflection(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"message":    "Reflection submitted successfully",
		"reflection": reflection,
	})
}

// GET /reflections?limit=30&offset=0
func (rh *ReflectionHandler) List(c *gin.Context) {
	limit, offset, err := pageParams(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	reflections, err := rh.reflectionService.ListReflections(c.Request.Context(), limit, offset)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reflections": reflections})
}

// GET /reflections/today
func (rh *ReflectionHandler) Today(c *gin.Context) {
	status, err := rh.reflectionService.Today(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, status)
}

// GET /reflections/:id
func (rh *ReflectionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "reflection_not_found", errReflectionNotFound)
		return
	}
	reflection, err := rh.reflectionService.GetReflection(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reflection": reflection})
}

var errReflectionNotFound = apierr.NotFound("reflection_not_found", "Reflection not found")

// pageParams reads limit and offset; absent values are zero and the service
// applies its defaults.
func pageParams(c *gin.Context) (int, int, error) {
	limit, err := intQuery(c, "limit")
	if err != nil {
		return 0, 0, err
	}
	offset, err := intQuery(c, "offset")
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.Validation(name + " must be an integer")
	}
	return n, nil
}
