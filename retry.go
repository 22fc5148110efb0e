package descarteslabs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dlcdupree/descarteslabs-go/internal/backoff"
)

// RetryPolicy controls how a session retries transient failures. BackoffBase
// is drawn once when the policy is created, so each session keeps its own
// fixed base for the whole schedule.
type RetryPolicy struct {
	// MaxAttempts bounds the total number of tries, the first included.
	MaxAttempts int
	// MaxReadRetries bounds connection and read failures separately, so they
	// exhaust faster than status-driven retries.
	MaxReadRetries int
	// BackoffBase is the initial delay multiplier; attempt n waits
	// BackoffBase * 2^(n-1) before attempt n+1.
	BackoffBase time.Duration
	// RetryableMethods is the method whitelist; anything else fails on the
	// first terminal response regardless of status.
	RetryableMethods map[string]bool
	// RetryableStatuses is the status forcelist.
	RetryableStatuses map[int]bool
}

// DefaultRetryPolicy mirrors the production defaults: five attempts, two read
// retries, forcelist {429, 500, 502, 503} and a randomized backoff base.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    5,
		MaxReadRetries: 2,
		BackoffBase:    backoff.RandomBase(),
		RetryableMethods: map[string]bool{
			http.MethodHead:    true,
			http.MethodTrace:   true,
			http.MethodGet:     true,
			http.MethodPost:    true,
			http.MethodPut:     true,
			http.MethodOptions: true,
			http.MethodDelete:  true,
		},
		RetryableStatuses: map[int]bool{
			429: true,
			500: true,
			502: true,
			503: true,
		},
	}
}

// RetryableMethod reports whether method may be retried at all.
func (p RetryPolicy) RetryableMethod(method string) bool {
	return p.RetryableMethods[method]
}

// RetryableStatus reports whether status is in the forcelist.
func (p RetryPolicy) RetryableStatus(status int) bool {
	return p.RetryableStatuses[status]
}

// Delay returns the pause after the given 1-based failed attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	return backoff.Exponential(p.BackoffBase, attempt)
}

// parseRetryAfter parses a Retry-After header value, supporting both the
// delay-seconds and HTTP-date forms. Returns 0 when absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		if seconds > 0 {
			delay := time.Duration(seconds) * time.Second
			if delay > time.Hour {
				delay = time.Hour
			}
			return delay
		}
		return 0
	}

	if t, err := http.ParseTime(value); err == nil {
		delay := time.Until(t)
		if delay > 0 && delay <= time.Hour {
			return delay
		}
	}

	return 0
}
