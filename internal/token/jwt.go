package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/decepticons/linkshortener/internal/metrics"
	"github.com/decepticons/linkshortener/internal/repository"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims carried by every issued token. The subject is the username.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer creates signed access and refresh tokens. It keeps no state
// about issued tokens; revocation lives in the revocation store.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (i *Issuer) IssueAccessToken(username string) (string, error) {
	return i.issue(username, i.accessTTL)
}

func (i *Issuer) IssueRefreshToken(username string) (string, error) {
	return i.issue(username, i.refreshTTL)
}

func (i *Issuer) issue(username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Validator verifies tokens: signature first, then expiry, then the
// revocation list, then the subject. Each failure kind maps to its own
// sentinel so the transport layer can pick the right status.
type Validator struct {
	secret  []byte
	revoked repository.RevokedTokenRepository
	logger  *zap.Logger
}

func NewValidator(secret string, revoked repository.RevokedTokenRepository) *Validator {
	return &Validator{
		secret:  []byte(secret),
		revoked: revoked,
		logger:  zap.L().With(zap.String("component", "TokenValidator")),
	}
}

// Validate runs the full check chain against an expected username.
func (v *Validator) Validate(ctx context.Context, tokenStr, expectedUsername string) error {
	claims, err := v.parse(tokenStr)
	if err != nil {
		v.count(err)
		return err
	}

	revoked, err := v.revoked.Exists(ctx, tokenStr)
	if err != nil {
		return err
	}
	if revoked {
		v.count(ErrTokenRevoked)
		return ErrTokenRevoked
	}

	if claims.Subject != expectedUsername {
		v.count(ErrTokenInvalid)
		return ErrTokenInvalid
	}

	metrics.TokenValidationTotal.WithLabelValues("ok").Inc()
	return nil
}

// ExtractUsername returns the subject of a well-formed, unexpired,
// unrevoked token.
func (v *Validator) ExtractUsername(ctx context.Context, tokenStr string) (string, error) {
	claims, err := v.parse(tokenStr)
	if err != nil {
		return "", err
	}

	revoked, err := v.revoked.Exists(ctx, tokenStr)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrTokenRevoked
	}

	return claims.Subject, nil
}

// ExtractExpiration returns the token's own expiry. Used on logout so
// the revocation entry inherits the token's natural lifetime.
func (v *Validator) ExtractExpiration(tokenStr string) (time.Time, error) {
	claims, err := v.parse(tokenStr)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}

func (v *Validator) parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func (v *Validator) count(err error) {
	switch {
	case errors.Is(err, ErrTokenExpired):
		metrics.TokenValidationTotal.WithLabelValues("expired").Inc()
	case errors.Is(err, ErrTokenRevoked):
		metrics.TokenValidationTotal.WithLabelValues("revoked").Inc()
	default:
		metrics.TokenValidationTotal.WithLabelValues("invalid").Inc()
	}
}
