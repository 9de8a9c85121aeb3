package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/consciousness-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps a service error onto the envelope. Anything that is
// not an *apierr.Error becomes a 500 with a generic message; the cause is
// attached to the gin context for the request logger.
func RespondServiceError(c *gin.Context, err error) {
	if ae, ok := apierr.As(err); ok {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		RespondError(c, status, ae.Code, ae)
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorEnvelope{
		Error: APIError{
			Message: "Internal server error",
			Code:    "internal_error",
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
