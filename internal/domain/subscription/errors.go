package subscription

import (
	"fmt"
	"net/http"
)

// LimitExceededError is raised when a quota-gated mutation would exceed the
// tenant's package limit. It always carries the machine-readable payload the
// HTTP layer maps to a 4xx response; it must never be downgraded to a generic
// error on the way out.
type LimitExceededError struct {
	LimitKey  LimitKey `json:"limitKey"`
	Limit     int64    `json:"limit"`
	Used      int64    `json:"used"`
	Remaining int64    `json:"remaining"`
}

// Error implements the error interface
func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("limit exceeded for %s: used %d of %d", e.LimitKey, e.Used, e.Limit)
}

// HTTPStatusCode returns the HTTP status for this error
func (e *LimitExceededError) HTTPStatusCode() int {
	return http.StatusTooManyRequests
}

// NewLimitExceededError builds the structured error; remaining is clamped at
// zero so the payload never reports negative headroom.
func NewLimitExceededError(key LimitKey, limit, used int64) *LimitExceededError {
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return &LimitExceededError{
		LimitKey:  key,
		Limit:     limit,
		Used:      used,
		Remaining: remaining,
	}
}
