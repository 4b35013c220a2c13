package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/decepticons/linkshortener/internal/repository"
	"github.com/decepticons/linkshortener/internal/service"
	"github.com/decepticons/linkshortener/internal/token"
)

type AuthHandler struct {
	svc    service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: zap.L().Named("AuthHandler"),
	}
}

// DTOs
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid JSON in Register", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request payload",
			Code:  "INVALID_PAYLOAD",
		})
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    user,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid JSON in Login", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request payload",
			Code:  "INVALID_PAYLOAD",
		})
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Refresh exchanges the bearer refresh token for a new token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "Missing or malformed Authorization header",
			Code:  "MISSING_TOKEN",
		})
		return
	}

	pair, err := h.svc.RefreshTokens(c.Request.Context(), refreshToken)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Logout revokes the presented bearer token.
func (h *AuthHandler) Logout(c *gin.Context) {
	accessToken, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "Missing or malformed Authorization header",
			Code:  "MISSING_TOKEN",
		})
		return
	}

	if err := h.svc.Logout(c.Request.Context(), accessToken); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(header, "Bearer "), true
}

func (h *AuthHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "Invalid username or password",
			Code:  "INVALID_CREDENTIALS",
		})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: "Username already registered",
			Code:  "USER_EXISTS",
		})
	case errors.Is(err, service.ErrInvalidPassword):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Password does not meet complexity requirements",
			Code:  "INVALID_PASSWORD",
		})
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "User not found",
			Code:  "USER_NOT_FOUND",
		})
	case errors.Is(err, token.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "Token expired",
			Code:  "TOKEN_EXPIRED",
		})
	case errors.Is(err, token.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "Token has been revoked",
			Code:  "TOKEN_REVOKED",
		})
	case errors.Is(err, token.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "Invalid token",
			Code:  "INVALID_TOKEN",
		})
	default:
		h.logger.Error("Unexpected service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}
}
