package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chronobus-api/internal/domain"
)

const msgServerError = "Server error"

var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidation:  http.StatusBadRequest,
	domain.KindConflict:    http.StatusConflict,
	domain.KindAuth:        http.StatusUnauthorized,
	domain.KindForbidden:   http.StatusForbidden,
	domain.KindNotFound:    http.StatusNotFound,
	domain.KindRateLimited: http.StatusTooManyRequests,
	domain.KindParse:       http.StatusInternalServerError,
	domain.KindServer:      http.StatusInternalServerError,
}

// statusOverrides cambia el status de un kind para un endpoint puntual.
type statusOverrides map[domain.ErrorKind]int

func statusFor(kind domain.ErrorKind, overrides statusOverrides) int {
	if status, ok := overrides[kind]; ok {
		return status
	}
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError escribe {"error": msg}. La causa interna solo va al log.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error, overrides statusOverrides) {
	kind := domain.KindOf(err)
	status := statusFor(kind, overrides)
	msg := domain.MessageOf(err, msgServerError)

	if status >= http.StatusInternalServerError {
		logger.Error(op+" failed", zap.Error(err), zap.String("kind", string(kind)))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
