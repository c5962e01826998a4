package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterOptions agrupa los parametros de transporte que no pertenecen a un handler.
type RouterOptions struct {
	AllowedOrigin string
	RateLimitRPM  int
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	opts RouterOptions,
	userH *UserHandler,
	sessionH *SessionHandler,
	calendarH *CalendarHandler,
	healthH *HealthHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", healthH.Check)

	requireSession := JWTAuthMiddleware(logger, userH.accounts)
	users := r.Group("/users")
	users.POST("", userH.Register)
	users.GET("", requireSession, userH.List)
	users.DELETE("", requireSession, userH.Delete)

	session := r.Group("/session", NewRateLimiter(opts.RateLimitRPM).Handler())
	session.GET("/confirm-email", sessionH.ConfirmEmail)
	session.POST("/login", sessionH.Login)
	session.POST("/recovery/request", sessionH.RequestRecovery)
	session.POST("/recovery", sessionH.ResetPassword)

	google := session.Group("/login-google", CORSMiddleware(opts.AllowedOrigin, "POST, OPTIONS"))
	google.POST("", sessionH.LoginGoogle)
	google.OPTIONS("", preflight)

	r.POST("/calendar-ics", calendarH.Import)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
