package model

import "time"

// RevokedToken records a bearer token invalidated before its natural
// expiry. ExpiresAt is copied from the token itself at revocation time,
// so the reaper can discard the row once the token would have expired
// anyway.
type RevokedToken struct {
	ID        int64     `json:"id" db:"id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}
