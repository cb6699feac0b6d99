package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
)

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout

// SlogManager manages slog-based logging with optional GELF shipping.
type SlogManager struct {
	mu       sync.Mutex
	logger   *slog.Logger
	provider ContextProvider
	closers  []io.Closer
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func handlerOptions(level string) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}
}

// SetContextProvider registers attributes added to every record logged
// after the next Setup.
func (m *SlogManager) SetContextProvider(p ContextProvider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provider = p
}

// Setup initializes the logging system. Records go to file when given,
// otherwise to stdout, and to every extra sink. Attributes set with
// WithAttrs on a record's context are always added.
func (m *SlogManager) Setup(file io.Writer, level string, extra ...Sink) {
	opts := handlerOptions(level)

	primary := Sink{Name: "console", Handler: slog.NewTextHandler(stdout, opts)}
	if file != nil {
		primary = Sink{Name: "file", Handler: slog.NewTextHandler(file, opts)}
	}
	multi := NewMultiHandler(append([]Sink{primary}, extra...)...)

	m.mu.Lock()
	m.logger = slog.New(NewContextHandler(multi, m.provider))
	logger := m.logger
	m.mu.Unlock()

	logger.Info("Logging initialized", "level", level, "sinks", multi.Sinks())
}

// AddGELF connects a Graylog GELF/UDP sink at address. The writer is closed
// by Close.
func (m *SlogManager) AddGELF(address, level string) (Sink, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return Sink{}, fmt.Errorf("failed to connect to graylog at %s: %w", address, err)
	}
	m.mu.Lock()
	m.closers = append(m.closers, w)
	m.mu.Unlock()
	return Sink{Name: "graylog", Handler: slog.NewJSONHandler(w, handlerOptions(level))}, nil
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Close releases remote log sinks.
func (m *SlogManager) Close(ctx context.Context) error {
	m.mu.Lock()
	closers := m.closers
	m.closers = nil
	m.mu.Unlock()

	var errs []error
	for _, c := range closers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
