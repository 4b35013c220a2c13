package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/decepticons/linkshortener/internal/metrics"
	"github.com/decepticons/linkshortener/internal/repository"
)

// Reaper periodically purges revocation entries whose recorded expiry
// has passed. The purge is idempotent, so concurrent reapers across
// instances are harmless.
type Reaper struct {
	repo     repository.RevokedTokenRepository
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewReaper(repo repository.RevokedTokenRepository, interval time.Duration) *Reaper {
	return &Reaper{
		repo:     repo,
		interval: interval,
		now:      time.Now,
		logger:   zap.L().With(zap.String("component", "Reaper")),
	}
}

// Start runs the purge loop until ctx is cancelled.
func (r *Reaper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce purges everything expired before the current clock reading.
func (r *Reaper) RunOnce(ctx context.Context) {
	purged, err := r.repo.PurgeExpiredBefore(ctx, r.now())
	if err != nil {
		r.logger.Error("Failed to purge expired revoked tokens", zap.Error(err))
		return
	}

	if purged > 0 {
		r.logger.Info("Purged expired revoked tokens", zap.Int64("count", purged))
	}
	metrics.RevokedTokensPurged.Add(float64(purged))
}
