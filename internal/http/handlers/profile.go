package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/consciousness-backend/internal/http/response"
	"github.com/yungbote/consciousness-backend/internal/services"
)

type ProfileHandler struct {
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// POST /profile
func (ph *ProfileHandler) Save(c *gin.Context) {
	var req services.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	profile, err := ph.profileService.SaveProfile(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"message": "Profile saved successfully",
		"profile": profile,
	})
}

// GET /profile
// profile is null until the user saves one.
func (ph *ProfileHandler) Get(c *gin.Context) {
	profile, err := ph.profileService.GetProfile(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": profile})
}
