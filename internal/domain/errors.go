package domain

import (
	"errors"
	"fmt"
	"time"
)

// Named conditions raised by business logic. Handlers return these as-is;
// the HTTP layer owns the translation to status codes and wire error codes.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrTicketExpired      = errors.New("session ticket expired")
	ErrBadSignature       = errors.New("session ticket signature mismatch")
	ErrMalformedTicket    = errors.New("malformed session ticket")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrSelfScan           = errors.New("cannot scan own code")
	ErrServiceUnavailable = errors.New("topic service unavailable")
	ErrGenerationFailed   = errors.New("topic generation failed")
	ErrProfileTooLarge    = errors.New("profile data too large")
)

// CooldownError reports a throttled repeat scan along with how long the
// pair has to wait before scanning again.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("scan cooldown active, retry after %s", e.RetryAfter)
}
