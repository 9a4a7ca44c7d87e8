// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

// Envelope is the uniform response body of every endpoint. Status is
// true exactly when the HTTP status code is 2xx, so clients reading
// only the body still see the outcome.
type Envelope struct {
	Status  bool        `json:"status"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// respond writes a success envelope
func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Envelope{
		Status:  status >= 200 && status < 300,
		Data:    data,
		Message: message,
	})
}

// respondError maps a service error to its HTTP status and writes an
// error envelope. Internal causes are already masked by apperrors.
func respondError(c *gin.Context, err error) {
	status := statusForKind(apperrors.KindOf(err))
	c.JSON(status, Envelope{
		Status:  false,
		Data:    nil,
		Message: apperrors.MessageOf(err),
	})
}

// respondBindError reports a request binding failure as a validation error
func respondBindError(c *gin.Context, err error) {
	respondError(c, apperrors.Validation("invalid request data: %v", err))
}

func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
