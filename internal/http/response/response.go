package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/situacio-backend/internal/platform/apierr"
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

// RespondAPIError writes an *apierr.Error with its own status and code. Anything else is
// a 500.
func RespondAPIError(c *gin.Context, err error) {
	if ae, ok := apierr.As(err); ok && ae.Status != 0 {
		RespondError(c, ae.Status, ae.Code, ae)
		return
	}
	RespondError(c, http.StatusInternalServerError, "internal_error", err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
