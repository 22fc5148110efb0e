package descarteslabs

import "github.com/google/uuid"

// DebugConfig selects which client events are logged when a Logger is set.
type DebugConfig struct {
	Enabled      bool
	LogRequests  bool
	LogRetries   bool
	LogCache     bool
	RequestIDGen func() string
}

// DefaultDebugConfig enables every event class once debugging is switched on
// and tags requests with UUIDs.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:      false,
		LogRequests:  true,
		LogRetries:   true,
		LogCache:     true,
		RequestIDGen: uuid.NewString,
	}
}
