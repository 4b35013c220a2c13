package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidURL            = errors.New("invalid URL format")
	ErrCodeSpaceExhausted    = errors.New("failed to allocate unique code after max attempts")
	ErrLinkExpired           = errors.New("short link is out of date")
	ErrOwnershipViolation    = errors.New("link belongs to another user")
	ErrInvalidExpirationDate = errors.New("expiration date must be in the future")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUserAlreadyExists     = errors.New("username already exists")
	ErrInvalidPassword       = errors.New("password does not meet complexity requirements")
)

// LinkExpiredError reports a resolve of a link that existed but is no
// longer live. Distinct from not-found: callers must be able to tell
// "never existed" from "existed then expired".
type LinkExpiredError struct {
	Code      string
	ExpiresAt *time.Time
}

func (e *LinkExpiredError) Error() string {
	if e.ExpiresAt == nil {
		return fmt.Sprintf("short link %q is out of date", e.Code)
	}
	return fmt.Sprintf("short link %q is out of date since %s", e.Code, e.ExpiresAt.Format(time.RFC3339))
}

func (e *LinkExpiredError) Unwrap() error { return ErrLinkExpired }

// InvalidExpirationDateError carries the rejected date.
type InvalidExpirationDateError struct {
	Date time.Time
}

func (e *InvalidExpirationDateError) Error() string {
	return fmt.Sprintf("expiration date %s must be in the future", e.Date.Format(time.RFC3339))
}

func (e *InvalidExpirationDateError) Unwrap() error { return ErrInvalidExpirationDate }
