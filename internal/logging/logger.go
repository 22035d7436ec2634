// Package logging provides the structured logger shared by every livedocs
// package. Messages carry a context, warnings and errors carry the error
// that caused them.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel is the minimum severity a logger emits.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// slogLevel maps LogLevel onto slog's spacing of four between levels.
func (l LogLevel) slogLevel() slog.Level {
	return slog.Level((int(l) - 1) * 4)
}

func (l LogLevel) String() string {
	return l.slogLevel().String()
}

// ParseLevel converts a textual level ("debug", "info", "warn", "error")
// into a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger interface for structured logging
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
	Error(ctx context.Context, err error, msg string, fields ...interface{})

	With(fields ...interface{}) Logger
	WithComponent(component string) Logger
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level     LogLevel
	Format    string // "json" or "text"
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultConfig returns an info level text logger writing to stderr.
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// DocsLogger implements Logger on top of a slog.Handler. Fields added with
// With are kept in the order they were added.
type DocsLogger struct {
	handler   slog.Handler
	component string
	attrs     []slog.Attr
}

// NewLogger creates a logger from config; a nil config means DefaultConfig.
func NewLogger(config *LoggerConfig) *DocsLogger {
	if config == nil {
		config = DefaultConfig()
	}
	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     config.Level.slogLevel(),
		AddSource: config.AddSource,
	}

	var handler slog.Handler = slog.NewTextHandler(out, opts)
	if config.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	}

	return &DocsLogger{handler: handler, component: config.Component}
}

// NewNop returns a logger that discards everything.
func NewNop() *DocsLogger {
	return NewLogger(&LoggerConfig{Level: LevelError + 1, Output: io.Discard})
}

func (l *DocsLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelDebug, nil, msg, fields)
}

func (l *DocsLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelInfo, nil, msg, fields)
}

func (l *DocsLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelWarn, err, msg, fields)
}

func (l *DocsLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelError, err, msg, fields)
}

// With returns a logger that adds the key/value pairs in fields to every
// record. Pairs whose key is not a string are ignored.
func (l *DocsLogger) With(fields ...interface{}) Logger {
	attrs := make([]slog.Attr, 0, len(l.attrs)+len(fields)/2)
	attrs = append(attrs, l.attrs...)
	attrs = appendFields(attrs, fields)
	return &DocsLogger{handler: l.handler, component: l.component, attrs: attrs}
}

// WithComponent returns a logger tagged with the subsystem name.
func (l *DocsLogger) WithComponent(component string) Logger {
	return &DocsLogger{handler: l.handler, component: component, attrs: l.attrs}
}

func (l *DocsLogger) log(ctx context.Context, level slog.Level, err error, msg string, fields []interface{}) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}

	record := slog.NewRecord(time.Now(), level, msg, 0)
	if l.component != "" {
		record.AddAttrs(slog.String("component", l.component))
	}
	if err != nil {
		record.AddAttrs(slog.String("error", err.Error()))
	}
	record.AddAttrs(l.attrs...)
	record.AddAttrs(appendFields(nil, fields)...)

	_ = l.handler.Handle(ctx, record)
}

func appendFields(attrs []slog.Attr, fields []interface{}) []slog.Attr {
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			attrs = append(attrs, slog.Any(key, fields[i+1]))
		}
	}
	return attrs
}

// PerfLogger times one operation and logs its duration when it ends.
type PerfLogger struct {
	Logger
	start time.Time
}

// StartOperation returns a PerfLogger whose records carry operation.
func StartOperation(logger Logger, operation string) *PerfLogger {
	return &PerfLogger{
		Logger: logger.With("operation", operation),
		start:  time.Now(),
	}
}

// End logs the elapsed time at info level and returns it.
func (p *PerfLogger) End(ctx context.Context) time.Duration {
	d := time.Since(p.start)
	p.Info(ctx, "operation completed", "duration_ms", d.Milliseconds(), "duration", d.String())
	return d
}

// EndWithError logs the elapsed time and err at error level and returns the
// elapsed time.
func (p *PerfLogger) EndWithError(ctx context.Context, err error) time.Duration {
	d := time.Since(p.start)
	p.Error(ctx, err, "operation failed", "duration_ms", d.Milliseconds(), "duration", d.String())
	return d
}
