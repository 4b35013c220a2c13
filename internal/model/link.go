package model

import (
	"time"

	"github.com/google/uuid"
)

// LinkStatus represents the lifecycle state of a short link.
type LinkStatus string

const (
	LinkStatusActive   LinkStatus = "ACTIVE"
	LinkStatusInactive LinkStatus = "INACTIVE"
)

// Link represents a shortened URL entry in the system.
// The code is globally unique; status only ever moves ACTIVE -> INACTIVE.
type Link struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Code           string     `json:"code" db:"code"`
	OriginalURL    string     `json:"url" db:"original_url"`
	OwnerID        uuid.UUID  `json:"owner_id" db:"owner_id"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	Clicks         int64      `json:"clicks" db:"clicks"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty" db:"last_accessed_at"`
	Status         LinkStatus `json:"status" db:"status"`
}

// IsLive reports whether the link is ACTIVE and not past its expiry at
// the given instant. Expiry is evaluated lazily, only at access time.
func (l *Link) IsLive(now time.Time) bool {
	return l.Status == LinkStatusActive &&
		(l.ExpiresAt == nil || l.ExpiresAt.After(now))
}
