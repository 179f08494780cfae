// Package logx is the optional debug logger shared by the proxy packages.
//
// Two forms are accepted: a Printf-style Logger and a *slog.Logger. With
// neither configured nothing is logged. Messages sent to slog are emitted at
// debug level with a node_id attribute.
package logx

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/smnsjas/go-uaproxy/ua"
)

// Logger is an optional interface for debug logging.
type Logger interface {
	// Printf formats and logs a debug message.
	Printf(format string, v ...interface{})
}

// Sink fans debug messages out to the configured loggers. A nil *Sink is
// valid and logs nothing.
type Sink struct {
	mu     sync.RWMutex
	logger Logger
	slog   *slog.Logger
}

// New returns a Sink writing to logger and sl, either of which may be nil.
func New(logger Logger, sl *slog.Logger) *Sink {
	return &Sink{logger: logger, slog: sl}
}

// SetLogger replaces the Printf logger.
func (s *Sink) SetLogger(logger Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// SetSlogLogger replaces the structured logger.
func (s *Sink) SetSlogLogger(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slog = logger
}

// Enabled reports whether any logger is configured.
func (s *Sink) Enabled() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger != nil || s.slog != nil
}

// Logf logs a debug message about node.
func (s *Sink) Logf(node ua.NodeID, format string, v ...interface{}) {
	if s == nil {
		return
	}
	s.mu.RLock()
	logger, sl := s.logger, s.slog
	s.mu.RUnlock()

	if logger != nil {
		logger.Printf("[%s] "+format, append([]interface{}{node}, v...)...)
	}
	if sl != nil {
		sl.LogAttrs(context.Background(), slog.LevelDebug, fmt.Sprintf(format, v...),
			slog.String("node_id", node.String()))
	}
}
