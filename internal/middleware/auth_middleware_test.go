package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/decepticons/linkshortener/internal/model"
	"github.com/decepticons/linkshortener/internal/repository"
	"github.com/decepticons/linkshortener/internal/service"
	"github.com/decepticons/linkshortener/internal/token"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*service.TokenPair, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenPair), args.Error(1)
}

func (m *mockAuthService) RefreshTokens(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenPair), args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

func (m *mockAuthService) ResolvePrincipal(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type mockRevokedRepo struct {
	mock.Mock
}

func (m *mockRevokedRepo) Revoke(ctx context.Context, tokenStr string, expiresAt time.Time) error {
	args := m.Called(ctx, tokenStr, expiresAt)
	return args.Error(0)
}

func (m *mockRevokedRepo) Exists(ctx context.Context, tokenStr string) (bool, error) {
	args := m.Called(ctx, tokenStr)
	return args.Bool(0), args.Error(1)
}

func (m *mockRevokedRepo) PurgeExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

const middlewareTestSecret = "middleware-test-secret"

func setupAuthMiddleware(t *testing.T) (*gin.Engine, *token.Issuer, *mockAuthService, *mockRevokedRepo) {
	gin.SetMode(gin.TestMode)
	logger, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(logger)

	issuer := token.NewIssuer(middlewareTestSecret, time.Hour, 168*time.Hour)
	mockRevoked := new(mockRevokedRepo)
	validator := token.NewValidator(middlewareTestSecret, mockRevoked)
	mockAuth := new(mockAuthService)

	r := gin.New()
	r.GET("/protected", AuthMiddleware(validator, mockAuth), func(c *gin.Context) {
		user, err := PrincipalFromContext(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})

	return r, issuer, mockAuth, mockRevoked
}

func protectedRequest(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	r, issuer, mockAuth, mockRevoked := setupAuthMiddleware(t)

	tokenStr, err := issuer.IssueAccessToken("alice")
	assert.NoError(t, err)

	user := &model.User{ID: uuid.New(), Username: "alice", Status: model.UserStatusActive}
	mockRevoked.On("Exists", mock.Anything, tokenStr).Return(false, nil).Once()
	mockAuth.On("ResolvePrincipal", mock.Anything, "alice").Return(user, nil).Once()

	w := protectedRequest(r, "Bearer "+tokenStr)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
	mockAuth.AssertExpectations(t)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r, _, mockAuth, _ := setupAuthMiddleware(t)

	w := protectedRequest(r, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_TOKEN")
	mockAuth.AssertNotCalled(t, "ResolvePrincipal", mock.Anything, mock.Anything)
}

func TestAuthMiddleware_NotBearer(t *testing.T) {
	r, _, _, _ := setupAuthMiddleware(t)

	w := protectedRequest(r, "Basic dXNlcjpwYXNz")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_TOKEN")
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	r, _, _, _ := setupAuthMiddleware(t)

	expiredIssuer := token.NewIssuer(middlewareTestSecret, -time.Minute, -time.Minute)
	tokenStr, err := expiredIssuer.IssueAccessToken("alice")
	assert.NoError(t, err)

	w := protectedRequest(r, "Bearer "+tokenStr)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestAuthMiddleware_RevokedToken(t *testing.T) {
	r, issuer, _, mockRevoked := setupAuthMiddleware(t)

	tokenStr, err := issuer.IssueAccessToken("alice")
	assert.NoError(t, err)

	mockRevoked.On("Exists", mock.Anything, tokenStr).Return(true, nil).Once()

	w := protectedRequest(r, "Bearer "+tokenStr)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_REVOKED")
}

func TestAuthMiddleware_UnknownSubject(t *testing.T) {
	r, issuer, mockAuth, mockRevoked := setupAuthMiddleware(t)

	tokenStr, err := issuer.IssueAccessToken("ghost")
	assert.NoError(t, err)

	mockRevoked.On("Exists", mock.Anything, tokenStr).Return(false, nil).Once()
	mockAuth.On("ResolvePrincipal", mock.Anything, "ghost").
		Return(nil, repository.ErrUserNotFound).Once()

	w := protectedRequest(r, "Bearer "+tokenStr)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}
