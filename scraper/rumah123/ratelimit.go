package rumah123

import (
	"math/rand"
	"time"

	"rumah123-etl/utils"
)

// RateLimiter adapts the delay between page requests to how the site
// responds: consecutive successes shrink the base sleep toward a floor,
// a 429 grows it exponentially and backs off immediately.
type RateLimiter struct {
	baseSleep time.Duration
	minSleep  time.Duration
	maxSleep  time.Duration

	consecutive429s      int
	consecutiveSuccesses int

	logger  *utils.Logger
	sleepFn func(time.Duration)
}

// NewRateLimiter creates a limiter starting at base, bounded below by base
// and above by ten minutes.
func NewRateLimiter(base time.Duration, logger *utils.Logger) *RateLimiter {
	if base <= 0 {
		base = time.Second
	}
	return &RateLimiter{
		baseSleep: base,
		minSleep:  base,
		maxSleep:  10 * time.Minute,
		logger:    logger,
		sleepFn:   time.Sleep,
	}
}

// Sleep pauses for the jittered base duration before the next request.
func (r *RateLimiter) Sleep() {
	jitter := 0.8 + rand.Float64()*0.4
	r.sleepFn(time.Duration(float64(r.baseSleep) * jitter))
}

// HandleSuccess shrinks the base sleep after successful requests. The
// reduction gets more aggressive the longer the success streak.
func (r *RateLimiter) HandleSuccess() {
	r.consecutiveSuccesses++
	r.consecutive429s = 0

	var factor float64
	switch {
	case r.consecutiveSuccesses >= 5:
		factor = 0.5
	case r.consecutiveSuccesses >= 3:
		factor = 0.7
	default:
		factor = 0.9
	}

	newSleep := time.Duration(float64(r.baseSleep) * factor)
	if newSleep < r.minSleep {
		newSleep = r.minSleep
	}
	if newSleep < r.baseSleep {
		r.baseSleep = newSleep
		r.logger.Debug("[limiter] Reduced base sleep to %v after %d consecutive successes",
			r.baseSleep, r.consecutiveSuccesses)
	}
}

// HandleRateLimit grows the base sleep exponentially and backs off before
// the page is retried.
func (r *RateLimiter) HandleRateLimit() {
	r.consecutiveSuccesses = 0
	r.consecutive429s++

	r.baseSleep = time.Duration(float64(r.baseSleep) * 1.5)
	if r.baseSleep > r.maxSleep {
		r.baseSleep = r.maxSleep
	}

	backoff := time.Duration(float64(r.baseSleep) * (1.0 + rand.Float64()*0.5))
	r.logger.Warn("[limiter] Rate limit hit (%d in a row) — backing off for %v",
		r.consecutive429s, backoff)
	r.sleepFn(backoff)
}

// HandleOtherError applies a simple backoff after transient failures.
func (r *RateLimiter) HandleOtherError() {
	r.consecutiveSuccesses = 0
	r.sleepFn(time.Duration(float64(r.baseSleep) * 1.5))
}

// Base returns the current base sleep duration.
func (r *RateLimiter) Base() time.Duration {
	return r.baseSleep
}
