package descarteslabs

import (
	"crypto/tls"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
)

func TestSessionReusedAcrossCalls(t *testing.T) {
	auth := NewAuthContext("token-1")
	svc := NewService("https://places.example.com", auth)

	first, err := svc.Session()
	if err != nil {
		t.Fatalf("Session() returned error: %v", err)
	}
	second, err := svc.Session()
	if err != nil {
		t.Fatalf("Session() returned error: %v", err)
	}
	if first != second {
		t.Error("expected the session to be reused while the token is stable")
	}
}

func TestSessionRebuiltOnTokenRotation(t *testing.T) {
	auth := NewAuthContext("token-1")
	svc := NewService("https://places.example.com", auth)

	first, err := svc.Session()
	if err != nil {
		t.Fatalf("Session() returned error: %v", err)
	}

	auth.SetToken("token-2")

	second, err := svc.Session()
	if err != nil {
		t.Fatalf("Session() returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected a fresh session after token rotation")
	}
	if got := second.headers.Get("Authorization"); got != "token-2" {
		t.Errorf("Authorization = %q, want the rotated token", got)
	}
	if got := first.headers.Get("Authorization"); got != "token-1" {
		t.Errorf("old session Authorization = %q, must keep its snapshot", got)
	}

	third, err := svc.Session()
	if err != nil {
		t.Fatalf("Session() returned error: %v", err)
	}
	if second != third {
		t.Error("expected the rebuilt session to be reused without further rotation")
	}
}

func TestSessionHeaders(t *testing.T) {
	auth := NewAuthContext("secret")
	svc := NewService("https://places.example.com", auth)

	sess, err := svc.Session()
	if err != nil {
		t.Fatalf("Session() returned error: %v", err)
	}
	if got := sess.headers.Get("Authorization"); got != "secret" {
		t.Errorf("Authorization = %q", got)
	}
	if got := sess.headers.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := sess.headers.Get("User-Agent"); got != UserAgent() {
		t.Errorf("User-Agent = %q, want %q", got, UserAgent())
	}
}

func TestSessionConcurrentRotation(t *testing.T) {
	auth := NewAuthContext("token-1")
	svc := NewService("https://places.example.com", auth)

	auth.SetToken("token-2")

	// Concurrent callers observing a rotation may each rebuild, but none may
	// ever see a half-constructed session.
	var wg sync.WaitGroup
	sessions := make([]*Session, 8)
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := svc.Session()
			if err != nil {
				t.Errorf("Session() returned error: %v", err)
				return
			}
			sessions[i] = sess
		}(i)
	}
	wg.Wait()

	for i, sess := range sessions {
		if sess == nil || sess.httpClient == nil {
			t.Fatalf("sessions[%d] not fully constructed", i)
		}
		if got := sess.headers.Get("Authorization"); got != "token-2" {
			t.Errorf("sessions[%d] Authorization = %q", i, got)
		}
	}
}

func TestTLSFailsOpenWithoutTrustAnchor(t *testing.T) {
	auth := NewAuthContext("token")
	svc := NewService("https://places.example.com", auth)
	svc.trustAnchor = filepath.Join(t.TempDir(), "missing.crt")

	sess, err := svc.Session()
	if err != nil {
		t.Fatalf("Session() returned error: %v", err)
	}
	transport, ok := sess.httpClient.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport = %T", sess.httpClient.Transport)
	}
	if !transport.TLSClientConfig.InsecureSkipVerify {
		t.Error("expected verification disabled when the trust anchor is missing")
	}
}

func TestStrictTLSFailsClosed(t *testing.T) {
	auth := NewAuthContext("token")

	svc := NewService("https://places.example.com", auth)
	svc.strictTLS = true
	if _, err := svc.Session(); err == nil {
		t.Error("expected an error with strict TLS and no trust anchor")
	}

	svc = NewService("https://places.example.com", auth)
	svc.strictTLS = true
	svc.trustAnchor = filepath.Join(t.TempDir(), "missing.crt")
	if _, err := svc.Session(); err == nil {
		t.Error("expected an error with strict TLS and an unreadable trust anchor")
	}
}

func TestTLSConfigIgnoredWithCustomTransport(t *testing.T) {
	auth := NewAuthContext("token")
	svc := NewService("https://places.example.com", auth)
	svc.strictTLS = true
	svc.transport = &http.Transport{TLSClientConfig: &tls.Config{}}

	if _, err := svc.Session(); err != nil {
		t.Errorf("custom transports bypass TLS setup, got error: %v", err)
	}
}
