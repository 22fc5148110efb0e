// Package backoff computes retry delays for the session layer.
package backoff

import (
	"math/rand"
	"time"
)

const (
	minBase = 1 * time.Second
	maxBase = 3 * time.Second

	// maxDelay caps the exponential schedule so a high attempt count cannot
	// stall a caller for minutes.
	maxDelay = 2 * time.Minute
)

// RandomBase draws a backoff base uniformly from [1s, 3s). The base stays
// fixed for the lifetime of a session: the jitter desynchronizes distinct
// client instances against the backend, not attempts of one request.
func RandomBase() time.Duration {
	return minBase + time.Duration(rand.Float64()*float64(maxBase-minBase))
}

// Exponential returns base * 2^(attempt-1) for a 1-based attempt, capped at
// two minutes.
func Exponential(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	// Shift overflow guard.
	if attempt > 16 {
		attempt = 16
	}
	d := base << uint(attempt-1)
	if d < 0 || d > maxDelay {
		d = maxDelay
	}
	return d
}
