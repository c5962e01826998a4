package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chronobus-api/internal/domain"
	"chronobus-api/internal/service"
)

var (
	// un token de confirmacion invalido es un error del cliente
	confirmOverrides = statusOverrides{domain.KindAuth: http.StatusBadRequest}
	// cualquier rechazo de Google se reporta como fallo de autenticacion del servidor
	googleOverrides = statusOverrides{domain.KindAuth: http.StatusInternalServerError}
)

// SessionHandler agrupa los endpoints de /session.
type SessionHandler struct {
	logger   *zap.Logger
	accounts *service.AccountService
}

func NewSessionHandler(logger *zap.Logger, accounts *service.AccountService) *SessionHandler {
	return &SessionHandler{logger: logger, accounts: accounts}
}

// ConfirmEmail maneja GET /session/confirm-email?token=.
func (h *SessionHandler) ConfirmEmail(c *gin.Context) {
	already, err := h.accounts.ConfirmEmail(c.Request.Context(), c.Query("token"))
	if err != nil {
		respondError(c, h.logger, "confirm email", err, confirmOverrides)
		return
	}
	if already {
		c.JSON(http.StatusOK, gin.H{"message": "Email already confirmed."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email confirmed successfully."})
}

// Login maneja POST /session/login.
func (h *SessionHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		respondError(c, h.logger, "login", service.ErrMissingCredentials, nil)
		return
	}

	res, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "login", err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"email":   res.User.Email,
		"token":   res.Token,
	})
}

// LoginGoogle maneja POST /session/login-google.
func (h *SessionHandler) LoginGoogle(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid google login request", zap.Error(err))
		respondError(c, h.logger, "google login", service.ErrGoogleTokenMissing, nil)
		return
	}

	res, err := h.accounts.LoginWithGoogle(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, h.logger, "google login", err, googleOverrides)
		return
	}
	if res.Created {
		h.logger.Info("google account created", zap.String("user_id", res.User.ID))
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged in with Google",
		"email":   res.User.Email,
		"token":   res.Token,
	})
}

// RequestRecovery maneja POST /session/recovery/request.
func (h *SessionHandler) RequestRecovery(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid recovery request", zap.Error(err))
		respondError(c, h.logger, "recovery request", service.ErrRecoveryEmailMissing, nil)
		return
	}

	if err := h.accounts.RequestRecovery(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, "recovery request", err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recovery code sent."})
}

// ResetPassword maneja POST /session/recovery.
func (h *SessionHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Code     string `json:"codice"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid password reset request", zap.Error(err))
		respondError(c, h.logger, "password reset", service.ErrRecoveryFieldsMissing, nil)
		return
	}

	if err := h.accounts.ResetPassword(c.Request.Context(), req.Email, req.Code, req.Password); err != nil {
		respondError(c, h.logger, "password reset", err, nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Password updated."})
}
