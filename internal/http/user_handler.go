package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chronobus-api/internal/service"
)

// UserHandler mantiene dependencias para endpoints de /users.
type UserHandler struct {
	logger   *zap.Logger
	accounts *service.AccountService
}

func NewUserHandler(logger *zap.Logger, accounts *service.AccountService) *UserHandler {
	return &UserHandler{logger: logger, accounts: accounts}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register maneja POST /users.
func (h *UserHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		respondError(c, h.logger, "register", service.ErrMissingCredentials, nil)
		return
	}

	res, err := h.accounts.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "register", err, nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful. Please check your email.",
		"token":   res.Token,
	})
}

// List maneja GET /users (solo admin).
func (h *UserHandler) List(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	users, err := h.accounts.ListUsers(c.Request.Context(), claims)
	if err != nil {
		respondError(c, h.logger, "list users", err, nil)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Delete maneja DELETE /users.
func (h *UserHandler) Delete(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	if err := h.accounts.DeleteAccount(c.Request.Context(), claims); err != nil {
		respondError(c, h.logger, "delete account", err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account successfully deleted"})
}
