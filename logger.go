package descarteslabs

import (
	"fmt"
	"log"
	"strings"
)

// Logger is the minimal structured logging interface the client emits debug
// output through. Arguments after the message are alternating key/value
// pairs.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// SimpleLogger writes leveled key/value output through the standard log
// package. Intended for development; production users should adapt their own
// logger to the Logger interface.
type SimpleLogger struct {
	logger *log.Logger
}

// NewSimpleLogger creates a SimpleLogger on the default log output.
func NewSimpleLogger() *SimpleLogger {
	return &SimpleLogger{logger: log.Default()}
}

func (s *SimpleLogger) emit(level, msg string, keysAndValues ...interface{}) {
	if len(keysAndValues) == 0 {
		s.logger.Printf("[%s] %s", level, msg)
		return
	}
	var b strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&b, "%v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&b, "%v", keysAndValues[i])
		}
	}
	s.logger.Printf("[%s] %s %s", level, msg, b.String())
}

// Debug logs at debug level.
func (s *SimpleLogger) Debug(msg string, keysAndValues ...interface{}) {
	s.emit("DEBUG", msg, keysAndValues...)
}

// Info logs at info level.
func (s *SimpleLogger) Info(msg string, keysAndValues ...interface{}) {
	s.emit("INFO", msg, keysAndValues...)
}

// Warn logs at warn level.
func (s *SimpleLogger) Warn(msg string, keysAndValues ...interface{}) {
	s.emit("WARN", msg, keysAndValues...)
}

// Error logs at error level.
func (s *SimpleLogger) Error(msg string, keysAndValues ...interface{}) {
	s.emit("ERROR", msg, keysAndValues...)
}
