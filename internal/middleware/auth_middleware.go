package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/decepticons/linkshortener/internal/model"
	"github.com/decepticons/linkshortener/internal/service"
	"github.com/decepticons/linkshortener/internal/token"
)

const principalKey = "principal"

var (
	ErrMissingToken     = errors.New("missing authorization header")
	ErrMissingPrincipal = errors.New("principal not found in context")
)

// AuthMiddleware validates the bearer token on every request and
// resolves the token subject to the current user, which handlers read
// back via PrincipalFromContext for ownership checks.
func AuthMiddleware(validator *token.Validator, auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": ErrMissingToken.Error(),
				"code":  "MISSING_TOKEN",
			})
			c.Abort()
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")

		username, err := validator.ExtractUsername(c.Request.Context(), tokenStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
				"code":  tokenErrorCode(err),
			})
			c.Abort()
			return
		}

		user, err := auth.ResolvePrincipal(c.Request.Context(), username)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "unknown token subject",
				"code":  "INVALID_TOKEN",
			})
			c.Abort()
			return
		}

		SetPrincipal(c, user)
		c.Next()
	}
}

// SetPrincipal stores the authenticated user on the request context.
func SetPrincipal(c *gin.Context, user *model.User) {
	c.Set(principalKey, user)
}

// PrincipalFromContext returns the authenticated user stored by
// AuthMiddleware.
func PrincipalFromContext(c *gin.Context) (*model.User, error) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, ErrMissingPrincipal
	}

	user, ok := value.(*model.User)
	if !ok {
		return nil, ErrMissingPrincipal
	}
	return user, nil
}

func tokenErrorCode(err error) string {
	switch {
	case errors.Is(err, token.ErrTokenExpired):
		return "TOKEN_EXPIRED"
	case errors.Is(err, token.ErrTokenRevoked):
		return "TOKEN_REVOKED"
	default:
		return "INVALID_TOKEN"
	}
}
