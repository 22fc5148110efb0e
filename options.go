package descarteslabs

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Option configures a client at construction time.
type Option func(*Places)

// WithBaseURL overrides the backend URL, taking precedence over the
// environment variable.
func WithBaseURL(baseURL string) Option {
	return func(p *Places) {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout sets the (connect, read) timeout pair applied to every request.
func WithTimeout(connect, read time.Duration) Option {
	return func(p *Places) {
		p.timeout = Timeout{Connect: connect, Read: read}
	}
}

// WithRetryPolicy pins the retry policy for every session this client builds,
// including the backoff base. Without it each new session draws its own
// randomized base.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(p *Places) {
		p.newPolicy = func() RetryPolicy { return policy }
	}
}

// WithCacheSize sets the maximum number of cached responses.
func WithCacheSize(maxSize int) Option {
	return func(p *Places) {
		p.cacheSize = maxSize
	}
}

// WithCacheTTL sets how long a cached response stays live.
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Places) {
		p.cacheTTL = ttl
	}
}

// WithClock overrides the cache clock, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Places) {
		p.clock = now
	}
}

// WithTransport replaces the pooled HTTP transport, bypassing TLS setup.
func WithTransport(transport http.RoundTripper) Option {
	return func(p *Places) {
		p.transport = transport
	}
}

// WithTrustAnchor points sessions at a PEM trust-anchor file for TLS
// verification.
func WithTrustAnchor(path string) Option {
	return func(p *Places) {
		p.trustAnchor = path
	}
}

// WithStrictTLS refuses to build sessions without a usable trust anchor
// instead of falling back to disabled verification.
func WithStrictTLS() Option {
	return func(p *Places) {
		p.strictTLS = true
	}
}

// WithSleep overrides the pause between retry attempts, primarily for tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(p *Places) {
		p.sleep = sleep
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger Logger) Option {
	return func(p *Places) {
		p.logger = logger
	}
}

// WithDebug enables debug logging with the default configuration.
func WithDebug() Option {
	return func(p *Places) {
		if p.debug == nil {
			p.debug = DefaultDebugConfig()
		}
		p.debug.Enabled = true
	}
}

// WithDebugConfig sets a custom debug configuration.
func WithDebugConfig(config *DebugConfig) Option {
	return func(p *Places) {
		p.debug = config
	}
}

// WithMetrics enables Prometheus metrics on the default registerer.
func WithMetrics() Option {
	return func(p *Places) {
		p.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(p *Places) {
		p.metrics = collector
	}
}

// validate accumulates configuration errors before the first request can be
// issued.
func (p *Places) validate() error {
	var problems []string

	if p.baseURL == "" {
		problems = append(problems, "base URL must not be empty")
	}
	if p.auth == nil {
		problems = append(problems, "auth context must not be nil")
	}
	if p.timeout.Connect <= 0 || p.timeout.Read <= 0 {
		problems = append(problems, "timeouts must be positive")
	}
	if p.cacheSize <= 0 {
		problems = append(problems, "cache size must be positive")
	}
	if p.cacheTTL <= 0 {
		problems = append(problems, "cache TTL must be positive")
	}
	if policy := p.newPolicy(); policy.MaxAttempts < 1 {
		problems = append(problems, "retry policy needs at least one attempt")
	} else if policy.MaxReadRetries < 0 {
		problems = append(problems, "read retries must be non-negative")
	}
	if p.debug != nil && p.debug.Enabled && p.logger == nil {
		problems = append(problems, "logger must be set when debug is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
