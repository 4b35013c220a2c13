package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/decepticons/linkshortener/internal/model"
)

// RevokedTokenRepository is the durable revocation list. Exists is on
// the hot path of every authenticated request; PurgeExpiredBefore is
// idempotent and safe to run concurrently with ongoing Exists checks.
type RevokedTokenRepository interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	Exists(ctx context.Context, token string) (bool, error)
	PurgeExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type revokedTokenRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRevokedTokenRepository(db *pgxpool.Pool) RevokedTokenRepository {
	return &revokedTokenRepository{
		db:     db,
		logger: zap.L().With(zap.String("component", "RevokedTokenRepository")),
	}
}

func (r *revokedTokenRepository) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	// Revoking an already-revoked token is a no-op.
	query := `INSERT INTO revoked_tokens (token, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, token, expiresAt); err != nil {
		r.logger.Error("Failed to record revoked token", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *revokedTokenRepository) Exists(ctx context.Context, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var rec model.RevokedToken
	err := r.db.QueryRow(ctx,
		"SELECT id, token, expires_at FROM revoked_tokens WHERE token = $1", token).
		Scan(&rec.ID, &rec.Token, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		r.logger.Error("Failed to check token revocation", zap.Error(err))
		return false, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return true, nil
}

func (r *revokedTokenRepository) PurgeExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, "DELETE FROM revoked_tokens WHERE expires_at < $1", cutoff)
	if err != nil {
		r.logger.Error("Failed to purge revoked tokens", zap.Error(err))
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return tag.RowsAffected(), nil
}
