package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/decepticons/linkshortener/internal/model"
)

var (
	ErrLinkNotFound  = errors.New("link not found")
	ErrDatabaseError = errors.New("database error")
)

const dbTimeout = 5 * time.Second

// LinkRepository defines the interface for link data operations.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	FindByCode(ctx context.Context, code string) (*model.Link, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Link, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	// IncrementClicks bumps the click counter and last-accessed timestamp
	// in a single UPDATE so concurrent resolves cannot lose updates.
	IncrementClicks(ctx context.Context, code string) (*model.Link, error)
	UpdateStatus(ctx context.Context, code string, status model.LinkStatus) (*model.Link, error)
	UpdateExpiration(ctx context.Context, code string, expiresAt time.Time) (*model.Link, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page, size int) ([]model.Link, int64, error)
	ListActiveByOwner(ctx context.Context, ownerID uuid.UUID, page, size int) ([]model.Link, int64, error)
}

const linkColumns = "id, code, original_url, owner_id, created_at, expires_at, clicks, last_accessed_at, status"

// PostgresLinkRepository implements LinkRepository using PostgreSQL.
type PostgresLinkRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresLinkRepository(db *pgxpool.Pool) *PostgresLinkRepository {
	return &PostgresLinkRepository{
		db:     db,
		logger: zap.L().With(zap.String("component", "PostgresLinkRepository")),
	}
}

func (r *PostgresLinkRepository) Create(ctx context.Context, link *model.Link) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `INSERT INTO links (code, original_url, owner_id, expires_at, clicks, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		link.Code, link.OriginalURL, link.OwnerID, link.ExpiresAt, link.Clicks, link.Status).
		Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert link", zap.Error(err), zap.String("code", link.Code))
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return nil
}

func (r *PostgresLinkRepository) FindByCode(ctx context.Context, code string) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := r.db.QueryRow(ctx, "SELECT "+linkColumns+" FROM links WHERE code = $1", code)
	return r.scanLink(row, zap.String("code", code))
}

func (r *PostgresLinkRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := r.db.QueryRow(ctx, "SELECT "+linkColumns+" FROM links WHERE id = $1", id)
	return r.scanLink(row, zap.String("id", id.String()))
}

func (r *PostgresLinkRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM links WHERE code = $1", code).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to check code existence", zap.Error(err), zap.String("code", code))
		return false, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return count > 0, nil
}

func (r *PostgresLinkRepository) IncrementClicks(ctx context.Context, code string) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `UPDATE links
		SET clicks = clicks + 1, last_accessed_at = now()
		WHERE code = $1
		RETURNING ` + linkColumns

	row := r.db.QueryRow(ctx, query, code)
	return r.scanLink(row, zap.String("code", code))
}

func (r *PostgresLinkRepository) UpdateStatus(ctx context.Context, code string, status model.LinkStatus) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `UPDATE links SET status = $2 WHERE code = $1 RETURNING ` + linkColumns

	row := r.db.QueryRow(ctx, query, code, status)
	return r.scanLink(row, zap.String("code", code))
}

func (r *PostgresLinkRepository) UpdateExpiration(ctx context.Context, code string, expiresAt time.Time) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `UPDATE links SET expires_at = $2 WHERE code = $1 RETURNING ` + linkColumns

	row := r.db.QueryRow(ctx, query, code, expiresAt)
	return r.scanLink(row, zap.String("code", code))
}

func (r *PostgresLinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, "DELETE FROM links WHERE id = $1", id)
	if err != nil {
		r.logger.Error("Failed to delete link", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

func (r *PostgresLinkRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, page, size int) ([]model.Link, int64, error) {
	query := `SELECT ` + linkColumns + ` FROM links
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	countQuery := "SELECT COUNT(*) FROM links WHERE owner_id = $1"

	return r.list(ctx, query, countQuery, []any{ownerID}, page, size)
}

func (r *PostgresLinkRepository) ListActiveByOwner(ctx context.Context, ownerID uuid.UUID, page, size int) ([]model.Link, int64, error) {
	query := `SELECT ` + linkColumns + ` FROM links
		WHERE owner_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	countQuery := "SELECT COUNT(*) FROM links WHERE owner_id = $1 AND status = $2"

	return r.list(ctx, query, countQuery, []any{ownerID, model.LinkStatusActive}, page, size)
}

func (r *PostgresLinkRepository) list(ctx context.Context, query, countQuery string, args []any, page, size int) ([]model.Link, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count links", zap.Error(err))
		return nil, 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	rows, err := r.db.Query(ctx, query, append(args, size, page*size)...)
	if err != nil {
		r.logger.Error("Failed to list links", zap.Error(err))
		return nil, 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	links := make([]model.Link, 0, size)
	for rows.Next() {
		var l model.Link
		if err := rows.Scan(&l.ID, &l.Code, &l.OriginalURL, &l.OwnerID, &l.CreatedAt,
			&l.ExpiresAt, &l.Clicks, &l.LastAccessedAt, &l.Status); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return links, total, nil
}

func (r *PostgresLinkRepository) scanLink(row pgx.Row, field zap.Field) (*model.Link, error) {
	var l model.Link
	err := row.Scan(&l.ID, &l.Code, &l.OriginalURL, &l.OwnerID, &l.CreatedAt,
		&l.ExpiresAt, &l.Clicks, &l.LastAccessedAt, &l.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Link not found", field)
			return nil, ErrLinkNotFound
		}
		r.logger.Error("Database query error", zap.Error(err), field)
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return &l, nil
}
