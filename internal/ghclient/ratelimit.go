package ghclient

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when the GitHub API rate limit has been exceeded.
var ErrRateLimited = errors.New("rate limited")

// RateLimitState tracks the rate limit reported by the most recent responses.
type RateLimitState struct {
	mu        sync.RWMutex
	limited   bool
	resetAt   time.Time
	remaining int
	limit     int
}

var globalRateLimitState = &RateLimitState{remaining: -1, limit: -1}

// IsLimited returns true if we are currently rate limited.
func (s *RateLimitState) IsLimited() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.limited {
		return false
	}

	// limit has reset
	if time.Now().After(s.resetAt) {
		return false
	}

	return true
}

// SetLimited marks the state as limited until resetAt.
func (s *RateLimitState) SetLimited(limited bool, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limited = limited
	s.resetAt = resetAt
}

// Update records the values of the rate limit response headers.
func (s *RateLimitState) Update(remaining, limit int, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remaining = remaining
	s.limit = limit
	s.resetAt = resetAt
	s.limited = remaining == 0
}

// Status returns the last observed rate limit values.
func (s *RateLimitState) Status() RateLimitStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RateLimitStatus{
		Remaining: s.remaining,
		Limit:     s.limit,
		ResetAt:   s.resetAt,
		Limited:   s.limited && time.Now().Before(s.resetAt),
	}
}

// RateLimitStatus is a snapshot of the rate limit state. Remaining and Limit
// are -1 until a response carrying rate limit headers has been seen.
type RateLimitStatus struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
	Limited   bool
}

// GetRateLimitStatus returns the rate limit status observed by this process.
func GetRateLimitStatus() RateLimitStatus {
	return globalRateLimitState.Status()
}
