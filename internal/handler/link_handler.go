package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/decepticons/linkshortener/internal/middleware"
	"github.com/decepticons/linkshortener/internal/model"
	"github.com/decepticons/linkshortener/internal/repository"
	"github.com/decepticons/linkshortener/internal/service"
)

type CreateLinkRequest struct {
	URL string `json:"url" binding:"required"`
}

type UpdateExpirationRequest struct {
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type LinkHandler struct {
	service service.LinkService
	linkTTL time.Duration
	logger  *zap.Logger
}

func NewLinkHandler(svc service.LinkService, linkTTL time.Duration) *LinkHandler {
	return &LinkHandler{
		service: svc,
		linkTTL: linkTTL,
		logger:  zap.L().With(zap.String("component", "LinkHandler")),
	}
}

func (h *LinkHandler) CreateLink(c *gin.Context) {
	user, err := middleware.PrincipalFromContext(c)
	if err != nil {
		h.unauthorized(c, err)
		return
	}

	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_JSON",
		})
		return
	}

	link, err := h.service.Create(c.Request.Context(), req.URL, user.ID, h.linkTTL)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

// Redirect resolves a short code and sends the client to the
// destination URL.
func (h *LinkHandler) Redirect(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Code parameter is required",
			Code:  "MISSING_CODE",
		})
		return
	}

	link, err := h.service.Resolve(c.Request.Context(), code)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Redirect(http.StatusFound, link.OriginalURL)
}

func (h *LinkHandler) Deactivate(c *gin.Context) {
	user, err := middleware.PrincipalFromContext(c)
	if err != nil {
		h.unauthorized(c, err)
		return
	}

	code := strings.TrimSpace(c.Param("code"))

	link, err := h.service.Deactivate(c.Request.Context(), code, user.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

func (h *LinkHandler) UpdateExpiration(c *gin.Context) {
	user, err := middleware.PrincipalFromContext(c)
	if err != nil {
		h.unauthorized(c, err)
		return
	}

	code := strings.TrimSpace(c.Param("code"))

	var req UpdateExpirationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_JSON",
		})
		return
	}

	link, err := h.service.UpdateExpiration(c.Request.Context(), code, req.ExpiresAt, user.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

func (h *LinkHandler) DeleteLink(c *gin.Context) {
	user, err := middleware.PrincipalFromContext(c)
	if err != nil {
		h.unauthorized(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid link id",
			Code:  "INVALID_ID",
		})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, user.ID); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *LinkHandler) ListMyLinks(c *gin.Context) {
	h.list(c, h.service.ListByOwner)
}

func (h *LinkHandler) ListMyActiveLinks(c *gin.Context) {
	h.list(c, h.service.ListActiveByOwner)
}

type listQuery func(ctx context.Context, ownerID uuid.UUID, page, size int) ([]model.Link, int64, error)

func (h *LinkHandler) list(c *gin.Context, query listQuery) {
	user, err := middleware.PrincipalFromContext(c)
	if err != nil {
		h.unauthorized(c, err)
		return
	}

	page, size := paginationParams(c)

	links, total, err := query(c.Request.Context(), user.ID, page, size)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"links": links,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

func paginationParams(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "0"))
	if page < 0 {
		page = 0
	}
	size, _ = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func (h *LinkHandler) unauthorized(c *gin.Context, err error) {
	h.logger.Warn("Failed to resolve principal", zap.Error(err))
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error: "Unauthorized access",
		Code:  "UNAUTHORIZED",
	})
}

func (h *LinkHandler) handleError(c *gin.Context, err error) {
	var expired *service.LinkExpiredError
	var badDate *service.InvalidExpirationDateError

	switch {
	case errors.As(err, &expired):
		c.JSON(http.StatusGone, gin.H{
			"error":      "Short link is out of date",
			"code":       "LINK_EXPIRED",
			"short_code": expired.Code,
			"expired_at": expired.ExpiresAt,
		})
	case errors.Is(err, repository.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Short link not found",
			Code:  "LINK_NOT_FOUND",
		})
	case errors.Is(err, service.ErrOwnershipViolation):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error: "You are not allowed to modify this link",
			Code:  "OWNERSHIP_VIOLATION",
		})
	case errors.As(err, &badDate):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Expiration date must be in the future",
			Code:    "INVALID_EXPIRATION_DATE",
			Details: badDate.Date.Format(time.RFC3339),
		})
	case errors.Is(err, service.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid URL format",
			Code:  "INVALID_URL",
		})
	case errors.Is(err, service.ErrCodeSpaceExhausted):
		h.logger.Error("Code allocation failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Service temporarily unavailable",
			Code:  "CODE_ALLOCATION_FAILED",
		})
	case errors.Is(err, repository.ErrDatabaseError):
		h.logger.Error("Database error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Code:  "INTERNAL_ERROR",
		})
	default:
		h.logger.Error("Unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}
}
