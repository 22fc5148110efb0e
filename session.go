package descarteslabs

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Timeout is the (connect, read) pair applied to every request a session
// makes. Connect is enforced by the dialer, Read by a per-attempt deadline.
type Timeout struct {
	Connect time.Duration
	Read    time.Duration
}

// Session is an HTTP client bound to one base URL, one token snapshot and one
// retry policy. It is immutable once built; the owning Service replaces it
// wholesale when the token rotates, never mutating it in place.
type Session struct {
	baseURL    string
	headers    http.Header
	timeout    Timeout
	policy     RetryPolicy
	httpClient *http.Client
	sleep      func(time.Duration)
	logger     Logger
	debug      *DebugConfig
	metrics    *MetricsCollector
}

// Get issues a GET for path under the session base URL using the session
// timeout.
func (s *Session) Get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	return s.Do(ctx, http.MethodGet, path, params, s.timeout)
}

// Do issues one request with an explicit timeout override, applying the retry
// policy. On a 2xx response the raw body is returned unchanged; terminal
// failures are classified into an APIError.
func (s *Session) Do(ctx context.Context, method, path string, params url.Values, timeout Timeout) ([]byte, error) {
	target := s.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var requestID string
	if s.debug != nil && s.debug.Enabled && s.debug.RequestIDGen != nil {
		requestID = s.debug.RequestIDGen()
	}
	if s.debug != nil && s.debug.Enabled && s.debug.LogRequests && s.logger != nil {
		s.logger.Debug("Starting request", "requestID", requestID, "method", method, "url", target)
	}

	start := time.Now()
	if s.metrics != nil {
		s.metrics.RecordRequestStart(method, path)
		defer s.metrics.RecordRequestEnd(method, path)
	}

	readRetries := s.policy.MaxReadRetries
	var lastStatus int
	var lastBody []byte
	attempt := 1

	for {
		if attempt > 1 {
			if s.debug != nil && s.debug.Enabled && s.debug.LogRetries && s.logger != nil {
				s.logger.Info("Retry attempt", "requestID", requestID, "attempt", attempt, "maxAttempts", s.policy.MaxAttempts, "path", path)
			}
			if s.metrics != nil {
				s.metrics.RecordRetry(method, path, attempt-1)
			}
		}

		body, status, header, readFailure, err := s.roundTrip(ctx, method, target, timeout)
		if err != nil {
			// Connection failures spend only the overall attempt budget;
			// failures while reading the body additionally draw down the
			// separate read-retry budget.
			if s.policy.RetryableMethod(method) && attempt < s.policy.MaxAttempts && (!readFailure || readRetries > 0) {
				if readFailure {
					readRetries--
				}
				s.sleep(s.policy.Delay(attempt))
				attempt++
				continue
			}
			if s.metrics != nil {
				s.metrics.RecordError(string(KindTransport), method, path)
				s.metrics.RecordRequest(method, path, 0, time.Since(start))
			}
			return nil, &APIError{
				Kind:        KindTransport,
				Method:      method,
				URL:         target,
				Attempt:     attempt,
				MaxAttempts: s.policy.MaxAttempts,
				Cause:       err,
			}
		}

		if status >= 200 && status < 300 {
			if s.metrics != nil {
				s.metrics.RecordRequest(method, path, status, time.Since(start))
			}
			return body, nil
		}

		lastStatus, lastBody = status, body
		if s.policy.RetryableStatus(status) && s.policy.RetryableMethod(method) && attempt < s.policy.MaxAttempts {
			delay := s.policy.Delay(attempt)
			if ra := parseRetryAfter(header.Get("Retry-After")); ra > 0 {
				delay = ra
			}
			s.sleep(delay)
			attempt++
			continue
		}
		break
	}

	apiErr := Classify(lastStatus, lastBody)
	apiErr.Method = method
	apiErr.URL = target
	apiErr.Attempt = attempt
	apiErr.MaxAttempts = s.policy.MaxAttempts

	if s.metrics != nil {
		s.metrics.RecordError(string(apiErr.Kind), method, path)
		s.metrics.RecordRequest(method, path, lastStatus, time.Since(start))
	}
	if s.debug != nil && s.debug.Enabled && s.debug.LogRequests && s.logger != nil {
		s.logger.Warn("Request failed", "requestID", requestID, "kind", string(apiErr.Kind), "status", lastStatus)
	}
	return nil, apiErr
}

// roundTrip performs a single attempt. Both failure modes are transient
// transport errors; readFailure tells them apart so the caller can apply the
// stricter read-retry budget to body read errors only.
func (s *Session) roundTrip(ctx context.Context, method, target string, timeout Timeout) (body []byte, status int, header http.Header, readFailure bool, err error) {
	if timeout.Read > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout.Read)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, 0, nil, false, err
	}
	for name, values := range s.headers {
		req.Header[name] = values
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, nil, false, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, nil, true, err
	}
	return body, resp.StatusCode, resp.Header, false, nil
}
