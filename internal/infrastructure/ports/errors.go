package ports

import (
	"errors"
	"fmt"
	"time"
)

// The remote server reports failures in a small closed set of categories.
// Typed errors let callers classify with errors.As instead of string
// matching on response bodies.

// AuthError indicates the token was rejected. Permanent.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// NotFoundError indicates the referenced entity does not exist. Permanent.
type NotFoundError struct {
	Resource string
	Symbol   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Symbol)
}

// RateLimitedError indicates the server throttled the request. Transient;
// the caller should wait RetryAfter before reissuing.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// CooldownError indicates the ship is still on an action cooldown.
// Transient; the caller should wait Remaining before reissuing.
type CooldownError struct {
	ShipSymbol string
	Remaining  time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("ship %s on cooldown for %s", e.ShipSymbol, e.Remaining)
}

// InsufficientFundsError indicates the agent cannot afford the transaction
type InsufficientFundsError struct {
	Required  int
	Available int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %d credits, have %d", e.Required, e.Available)
}

// InvalidStateError indicates the ship or contract is not in a state that
// permits the requested action (e.g. navigating while docked)
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: %s", e.Reason)
}

// ServerError indicates a 5xx-class failure on the remote side. Transient.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsTransient reports whether the error is worth retrying with backoff:
// rate limits, cooldowns, and server-side failures.
func IsTransient(err error) bool {
	var rateLimited *RateLimitedError
	var cooldown *CooldownError
	var serverErr *ServerError
	return errors.As(err, &rateLimited) ||
		errors.As(err, &cooldown) ||
		errors.As(err, &serverErr)
}

// IsPermanent reports whether the error should fail the owning task
// without further retries.
func IsPermanent(err error) bool {
	var authErr *AuthError
	var notFound *NotFoundError
	return errors.As(err, &authErr) || errors.As(err, &notFound)
}

// RetryDelay extracts the server-suggested wait from a transient error,
// or zero if the error carries none.
func RetryDelay(err error) time.Duration {
	var rateLimited *RateLimitedError
	if errors.As(err, &rateLimited) {
		return rateLimited.RetryAfter
	}
	var cooldown *CooldownError
	if errors.As(err, &cooldown) {
		return cooldown.Remaining
	}
	return 0
}
