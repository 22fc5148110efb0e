package descarteslabs

import "sync"

// AuthContext holds the bearer token shared by every service instance in a
// process. Services observe the token but never own it: rotating it here is
// picked up by each service on its next request, while requests already in
// flight keep the headers their session was built with.
type AuthContext struct {
	mu    sync.RWMutex
	token string
}

// NewAuthContext creates an auth context seeded with token.
func NewAuthContext(token string) *AuthContext {
	return &AuthContext{token: token}
}

// Token returns the current bearer token.
func (a *AuthContext) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// SetToken replaces the bearer token. All services sharing this context will
// rebuild their sessions on their next request.
func (a *AuthContext) SetToken(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = token
}
