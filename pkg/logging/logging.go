// Package logging builds the structured logger used across armature and
// adapts it to the fire-and-forget log sink the editing core writes to.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultHistory is how many sink messages are retained for Messages.
const DefaultHistory = 256

// Logger is the log sink contract consumed by the editing core.
type Logger interface {
	Log(message string)
}

// New returns a charm logger writing to w at the named level.
// Unknown level names fall back to info.
func New(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "armature",
	})
	l.SetLevel(ParseLevel(level))
	return l
}

// ParseLevel maps a config level name onto a charm log level.
func ParseLevel(level string) log.Level {
	lv, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return lv
}

// Sink forwards operation feedback to a logger at info level and keeps
// a bounded in-memory history of it.
type Sink struct {
	mu       sync.Mutex
	logger   *log.Logger
	messages []string
	limit    int
}

// NewSink wraps logger. A nil logger discards output but still records history.
func NewSink(logger *log.Logger) *Sink {
	if logger == nil {
		logger = Discard()
	}
	return &Sink{logger: logger, limit: DefaultHistory}
}

// Log records message and writes it to the underlying logger.
func (s *Sink) Log(message string) {
	s.mu.Lock()
	s.messages = append(s.messages, message)
	if over := len(s.messages) - s.limit; over > 0 {
		s.messages = append([]string(nil), s.messages[over:]...)
	}
	s.mu.Unlock()
	s.logger.Info(message)
}

// Messages returns a copy of the retained messages, oldest first.
func (s *Sink) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out
}

// Last returns the most recent message, or "" if none were logged.
func (s *Sink) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return ""
	}
	return s.messages[len(s.messages)-1]
}

// Reset drops the retained history.
func (s *Sink) Reset() {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
}

// Logger exposes the wrapped charm logger for structured calls.
func (s *Sink) Logger() *log.Logger {
	return s.logger
}

// Discard returns a logger that writes nowhere.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
