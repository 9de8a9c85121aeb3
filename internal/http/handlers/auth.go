package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/consciousness-backend/internal/http/response"
	"github.com/yungbote/consciousness-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /auth/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"fullName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	session, err := ah.authService.RegisterUser(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, ah.sessionBody("User registered successfully", session))
}

// POST /auth/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	session, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, ah.sessionBody("Login successful", session))
}

// POST /auth/refresh
// body: { "refreshToken": "..." }
func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	session, err := ah.authService.RefreshUser(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, ah.sessionBody("Token refreshed", session))
}

// POST /auth/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Logged out successfully"})
}

// GET /auth/me
func (ah *AuthHandler) Me(c *gin.Context) {
	user, err := ah.authService.CurrentUser(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

func (ah *AuthHandler) sessionBody(message string, s *services.Session) gin.H {
	return gin.H{
		"message":      message,
		"user":         s.User,
		"token":        s.AccessToken,
		"refreshToken": s.RefreshToken,
		"expiresIn":    int(ah.authService.GetAccessTTL().Seconds()),
	}
}
