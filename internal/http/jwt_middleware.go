package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chronobus-api/internal/service"
)

const authClaimsKey = "auth_claims"

// JWTAuthMiddleware valida el bearer token de sesion y guarda los claims en el contexto.
func JWTAuthMiddleware(logger *zap.Logger, accounts *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := accounts.Authenticate(bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			respondError(c, logger, "authenticate", err, nil)
			return
		}
		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

// GetAuthClaims obtiene los claims de sesion desde el contexto.
func GetAuthClaims(c *gin.Context) (service.SessionClaims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.SessionClaims{}, false
	}
	claims, ok := val.(service.SessionClaims)
	return claims, ok
}
