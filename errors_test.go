package descarteslabs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{400, KindBadRequest},
		{404, KindNotFound},
		{429, KindRateLimited},
		{504, KindGatewayTimeout},
		{500, KindServerError},
		{502, KindServerError},
		{418, KindServerError},
	}

	for _, tt := range tests {
		err := Classify(tt.status, []byte("body text"))
		if err.Kind != tt.kind {
			t.Errorf("Classify(%d) kind = %s, want %s", tt.status, err.Kind, tt.kind)
		}
		if err.StatusCode != tt.status {
			t.Errorf("Classify(%d) status = %d", tt.status, err.StatusCode)
		}
		if err.Body != "body text" {
			t.Errorf("Classify(%d) dropped the body: %q", tt.status, err.Body)
		}
	}
}

func TestClassifyIgnoresBodyContent(t *testing.T) {
	// The body must never influence the kind, only the status does.
	err := Classify(400, []byte(`{"error": "not found"}`))
	if err.Kind != KindBadRequest {
		t.Errorf("kind = %s, want %s", err.Kind, KindBadRequest)
	}
}

func TestAPIErrorIs(t *testing.T) {
	err := Classify(404, nil)
	if !errors.Is(err, &APIError{Kind: KindNotFound}) {
		t.Error("expected errors.Is to match on kind")
	}
	if errors.Is(err, &APIError{Kind: KindBadRequest}) {
		t.Error("errors.Is matched a different kind")
	}
}

func TestAPIErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := &APIError{Kind: KindTransport, Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to expose the cause")
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{
		Kind:        KindRateLimited,
		StatusCode:  429,
		Method:      "GET",
		URL:         "https://example.com/find/x",
		Body:        "slow down",
		Attempt:     5,
		MaxAttempts: 5,
	}
	msg := err.Error()
	for _, want := range []string{"RateLimited", "429", "slow down", "attempt 5/5"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q missing %q", msg, want)
		}
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{Classify(429, nil), true},
		{Classify(504, nil), true},
		{Classify(503, nil), true},
		{&APIError{Kind: KindTransport}, true},
		{Classify(400, nil), false},
		{Classify(404, nil), false},
		{errors.New("plain"), false},
	}

	for _, tt := range tests {
		if got := IsTransient(tt.err); got != tt.want {
			t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
