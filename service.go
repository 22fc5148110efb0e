package descarteslabs

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// Service is the base every API client builds on. It identifies one backend
// by base URL, observes the shared auth token, and owns the session
// lifecycle: sessions are rebuilt on token rotation and discarded by
// replacement, never closed.
type Service struct {
	baseURL string
	auth    *AuthContext
	timeout Timeout

	trustAnchor string
	strictTLS   bool

	newPolicy func() RetryPolicy
	transport http.RoundTripper
	sleep     func(time.Duration)

	logger  Logger
	debug   *DebugConfig
	metrics *MetricsCollector

	mu            sync.Mutex
	current       *Session
	lastSeenToken string
}

// NewService creates a service base for the given backend. Concrete clients
// like Places compose it and adjust the timeout for their workload.
func NewService(baseURL string, auth *AuthContext) *Service {
	return &Service{
		baseURL:   strings.TrimRight(baseURL, "/"),
		auth:      auth,
		timeout:   Timeout{Connect: 9500 * time.Millisecond, Read: 30 * time.Second},
		newPolicy: DefaultRetryPolicy,
		sleep:     time.Sleep,
		debug:     DefaultDebugConfig(),
	}
}

// BaseURL returns the backend URL this service talks to.
func (s *Service) BaseURL() string {
	return s.baseURL
}

// Session returns the live session, rebuilding it first when none exists or
// the shared token has rotated since the last call. A rebuilt session is
// fully constructed before it becomes visible; concurrent callers observing
// a rotation may each rebuild, the last one published wins.
func (s *Service) Session() (*Session, error) {
	token := s.auth.Token()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.lastSeenToken == token {
		return s.current, nil
	}

	sess, err := s.buildSession(token)
	if err != nil {
		return nil, err
	}
	s.current = sess
	s.lastSeenToken = token
	return sess, nil
}

// buildSession snapshots the token into headers and wires the pooled
// transport. Header injection reads the token once here; a rotation mid-flight
// affects only the next Session call.
func (s *Service) buildSession(token string) (*Session, error) {
	headers := http.Header{}
	headers.Set("Authorization", token)
	headers.Set("Content-Type", "application/json")
	headers.Set("User-Agent", UserAgent())

	transport := s.transport
	if transport == nil {
		tlsConfig, err := s.tlsConfig()
		if err != nil {
			return nil, err
		}
		transport = &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   s.timeout.Connect,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSClientConfig:     tlsConfig,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
	}

	return &Session{
		baseURL:    s.baseURL,
		headers:    headers,
		timeout:    s.timeout,
		policy:     s.newPolicy(),
		httpClient: &http.Client{Transport: transport},
		sleep:      s.sleep,
		logger:     s.logger,
		debug:      s.debug,
		metrics:    s.metrics,
	}, nil
}

// tlsConfig loads the configured trust anchor when present and readable.
// Without one the historical behavior is to fail open and disable
// verification; WithStrictTLS refuses to build a session instead.
func (s *Service) tlsConfig() (*tls.Config, error) {
	if s.trustAnchor != "" {
		pem, err := os.ReadFile(s.trustAnchor)
		if err == nil {
			pool := x509.NewCertPool()
			if pool.AppendCertsFromPEM(pem) {
				return &tls.Config{RootCAs: pool}, nil
			}
			err = fmt.Errorf("no certificates in %s", s.trustAnchor)
		}
		if s.strictTLS {
			return nil, fmt.Errorf("trust anchor unusable: %w", err)
		}
		if s.logger != nil {
			s.logger.Warn("Trust anchor unusable, disabling TLS verification", "path", s.trustAnchor, "error", err.Error())
		}
	} else if s.strictTLS {
		return nil, errors.New("strict TLS requires a trust anchor")
	}

	return &tls.Config{InsecureSkipVerify: true}, nil
}
