package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/decepticons/linkshortener/internal/model"
	"github.com/decepticons/linkshortener/internal/repository"
	"github.com/decepticons/linkshortener/internal/token"
)

// TokenPair is the access/refresh pair handed out on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	// ResolvePrincipal maps a validated token subject to the current
	// owner identity used for ownership checks.
	ResolvePrincipal(ctx context.Context, username string) (*model.User, error)
}

type authService struct {
	userRepo    repository.UserRepository
	revokedRepo repository.RevokedTokenRepository
	issuer      *token.Issuer
	validator   *token.Validator
	logger      *zap.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	revokedRepo repository.RevokedTokenRepository,
	issuer *token.Issuer,
	validator *token.Validator,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		revokedRepo: revokedRepo,
		issuer:      issuer,
		validator:   validator,
		logger:      zap.L().With(zap.String("component", "AuthService")),
	}
}

func (s *authService) Register(ctx context.Context, username, password string) (*model.User, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	if !isValidPassword(password) {
		return nil, ErrInvalidPassword
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		Status:       model.UserStatusActive,
		Role:         model.RoleUser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err), zap.String("username", username))
		return nil, err
	}

	s.logger.Info("User registered", zap.String("username", username))
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Status != model.UserStatusActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issuePair(user.Username)
}

// RefreshTokens exchanges a live refresh token for a fresh pair. The
// validator rejects revoked tokens, so a logged-out refresh token
// cannot mint new credentials.
func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	username, err := s.validator.ExtractUsername(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return s.issuePair(user.Username)
}

// Logout revokes the presented token under its own natural expiry, so
// the revocation entry lives exactly as long as the token would have.
func (s *authService) Logout(ctx context.Context, accessToken string) error {
	expiresAt, err := s.validator.ExtractExpiration(accessToken)
	if err != nil {
		return err
	}

	if err := s.revokedRepo.Revoke(ctx, accessToken, expiresAt); err != nil {
		return err
	}

	s.logger.Info("Token revoked")
	return nil
}

func (s *authService) ResolvePrincipal(ctx context.Context, username string) (*model.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *authService) issuePair(username string) (*TokenPair, error) {
	accessToken, err := s.issuer.IssueAccessToken(username)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.issuer.IssueRefreshToken(username)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
