package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const corsAllowHeaders = "Content-Type, Authorization"

// CORSMiddleware publica el origen configurado y corta los preflight con 204.
func CORSMiddleware(allowedOrigin, methods string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		if allowedOrigin != "" {
			header.Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				header.Set("Vary", "Origin")
			}
		}
		header.Set("Access-Control-Allow-Methods", methods)
		header.Set("Access-Control-Allow-Headers", corsAllowHeaders)

		if c.Request.Method == http.MethodOptions {
			// 204 sin cuerpo: no hereda el Content-Type JSON global
			header.Del("Content-Type")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func preflight(c *gin.Context) {
	c.Writer.Header().Del("Content-Type")
	c.Status(http.StatusNoContent)
}
