package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/decepticons/linkshortener/internal/cache"
	"github.com/decepticons/linkshortener/internal/metrics"
	"github.com/decepticons/linkshortener/internal/model"
	"github.com/decepticons/linkshortener/internal/repository"
)

const maxCodeGenerationAttempts = 10

// LinkService orchestrates the short-link lifecycle over the link store
// and the lookaside cache.
type LinkService interface {
	Create(ctx context.Context, originalURL string, ownerID uuid.UUID, ttl time.Duration) (*model.Link, error)
	Resolve(ctx context.Context, code string) (*model.Link, error)
	Deactivate(ctx context.Context, code string, requester uuid.UUID) (*model.Link, error)
	UpdateExpiration(ctx context.Context, code string, newExpiry time.Time, requester uuid.UUID) (*model.Link, error)
	Delete(ctx context.Context, id uuid.UUID, requester uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page, size int) ([]model.Link, int64, error)
	ListActiveByOwner(ctx context.Context, ownerID uuid.UUID, page, size int) ([]model.Link, int64, error)
}

type linkService struct {
	repo   repository.LinkRepository
	cache  cache.LinkCache
	gen    CodeGenerator
	logger *zap.Logger
}

func NewLinkService(repo repository.LinkRepository, linkCache cache.LinkCache, gen CodeGenerator) LinkService {
	return &linkService{
		repo:   repo,
		cache:  linkCache,
		gen:    gen,
		logger: zap.L().With(zap.String("component", "LinkService")),
	}
}

// Create validates the destination, allocates a unique code, and
// persists the new link. The cache is populated lazily on first
// resolve, not here.
func (s *linkService) Create(ctx context.Context, originalURL string, ownerID uuid.UUID, ttl time.Duration) (*model.Link, error) {
	if !isValidURL(originalURL) {
		s.logger.Warn("Invalid URL provided", zap.String("url", originalURL))
		metrics.LinkCreationTotal.WithLabelValues("invalid_url").Inc()
		return nil, ErrInvalidURL
	}

	code, err := s.allocateCode(ctx)
	if err != nil {
		metrics.LinkCreationTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	expiresAt := time.Now().Add(ttl)
	link := &model.Link{
		Code:        code,
		OriginalURL: originalURL,
		OwnerID:     ownerID,
		ExpiresAt:   &expiresAt,
		Clicks:      0,
		Status:      model.LinkStatusActive,
	}

	if err := s.repo.Create(ctx, link); err != nil {
		metrics.LinkCreationTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	s.logger.Info("Link created",
		zap.String("code", link.Code),
		zap.String("owner_id", ownerID.String()),
	)
	metrics.LinkCreationTotal.WithLabelValues("created").Inc()
	return link, nil
}

// Resolve loads a link through the cache, evaluates liveness lazily and
// accounts the click. An expired-but-ACTIVE link flips to INACTIVE
// here; INACTIVE is terminal either way.
func (s *linkService) Resolve(ctx context.Context, code string) (*model.Link, error) {
	if !isValidCode(code) {
		metrics.LinkResolutionTotal.WithLabelValues("not_found").Inc()
		return nil, repository.ErrLinkNotFound
	}

	link, err := s.lookup(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			metrics.LinkResolutionTotal.WithLabelValues("not_found").Inc()
		}
		return nil, err
	}

	if !link.IsLive(time.Now()) {
		return nil, s.expire(ctx, link)
	}

	// Atomic increment at the store; the cache refresh afterwards is
	// best effort and does not need to be atomic with it.
	updated, err := s.repo.IncrementClicks(ctx, code)
	if err != nil {
		return nil, err
	}
	s.putCache(ctx, code, updated)

	metrics.LinkResolutionTotal.WithLabelValues("ok").Inc()
	return updated, nil
}

// Deactivate moves the requester's link to INACTIVE. Idempotent.
func (s *linkService) Deactivate(ctx context.Context, code string, requester uuid.UUID) (*model.Link, error) {
	link, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if link.OwnerID != requester {
		return nil, ErrOwnershipViolation
	}

	updated, err := s.repo.UpdateStatus(ctx, code, model.LinkStatusInactive)
	if err != nil {
		return nil, err
	}
	s.putCache(ctx, code, updated)

	s.logger.Info("Link deactivated", zap.String("code", code))
	return updated, nil
}

func (s *linkService) UpdateExpiration(ctx context.Context, code string, newExpiry time.Time, requester uuid.UUID) (*model.Link, error) {
	link, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if link.OwnerID != requester {
		return nil, ErrOwnershipViolation
	}

	if !newExpiry.After(time.Now()) {
		return nil, &InvalidExpirationDateError{Date: newExpiry}
	}

	updated, err := s.repo.UpdateExpiration(ctx, code, newExpiry)
	if err != nil {
		return nil, err
	}
	s.putCache(ctx, code, updated)

	return updated, nil
}

func (s *linkService) Delete(ctx context.Context, id uuid.UUID, requester uuid.UUID) error {
	link, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if link.OwnerID != requester {
		return ErrOwnershipViolation
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Evict(ctx, link.Code); err != nil {
		s.logger.Warn("Failed to evict deleted link from cache",
			zap.Error(err), zap.String("code", link.Code))
	}

	s.logger.Info("Link deleted", zap.String("id", id.String()), zap.String("code", link.Code))
	return nil
}

// ListByOwner returns the owner's links ordered by creation time
// descending. Bulk reads bypass the per-code cache.
func (s *linkService) ListByOwner(ctx context.Context, ownerID uuid.UUID, page, size int) ([]model.Link, int64, error) {
	return s.repo.ListByOwner(ctx, ownerID, page, size)
}

func (s *linkService) ListActiveByOwner(ctx context.Context, ownerID uuid.UUID, page, size int) ([]model.Link, int64, error) {
	return s.repo.ListActiveByOwner(ctx, ownerID, page, size)
}

// lookup reads through the cache: hit serves directly, miss loads from
// the store and populates the cache.
func (s *linkService) lookup(ctx context.Context, code string) (*model.Link, error) {
	cached, err := s.cache.Get(ctx, code)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Cache lookup failed, falling back to store",
			zap.Error(err), zap.String("code", code))
	}

	link, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	s.putCache(ctx, code, link)

	return link, nil
}

// expire handles a dead link found during resolve: an ACTIVE link past
// its expiry is flipped to INACTIVE and the cache refreshed; an already
// INACTIVE link just reports the same terminal error.
func (s *linkService) expire(ctx context.Context, link *model.Link) error {
	if link.Status == model.LinkStatusActive {
		updated, err := s.repo.UpdateStatus(ctx, link.Code, model.LinkStatusInactive)
		if err != nil {
			return err
		}
		s.putCache(ctx, link.Code, updated)
		s.logger.Info("Link expired lazily",
			zap.String("code", link.Code),
			zap.Timep("expired_at", link.ExpiresAt),
		)
	}

	metrics.LinkResolutionTotal.WithLabelValues("expired").Inc()
	return &LinkExpiredError{Code: link.Code, ExpiresAt: link.ExpiresAt}
}

func (s *linkService) allocateCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeGenerationAttempts; attempt++ {
		code := s.gen.Generate()
		exists, err := s.repo.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w (%d attempts)", ErrCodeSpaceExhausted, maxCodeGenerationAttempts)
}

// putCache refreshes the cache entry after a store write. Failures are
// logged and swallowed: the store is the source of truth and the next
// miss re-synchronizes.
func (s *linkService) putCache(ctx context.Context, code string, link *model.Link) {
	if err := s.cache.Put(ctx, code, link); err != nil {
		s.logger.Warn("Failed to cache link", zap.Error(err), zap.String("code", code))
	}
}

// isValidURL accepts only well-formed absolute http/https URLs.
func isValidURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
