package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

type contextKey string

const (
	// RequestIDKey is the context key for the request ID set by the HTTP layer.
	RequestIDKey contextKey = "request_id"
	// UserIDKey is the context key for the authenticated uuid.UUID user ID.
	UserIDKey contextKey = "user_id"
)

// Logger wraps slog with the field helpers used across the service.
type Logger struct {
	*slog.Logger
}

// New creates a logger for env. LOG_FORMAT and LOG_LEVEL override the defaults.
func New(env string, output io.Writer) *Logger {
	return NewWithOptions(env, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"), output)
}

// NewWithOptions creates a logger with an explicit format ("json" or "text")
// and level ("debug", "info", "warn", "error"). Empty values pick env defaults.
func NewWithOptions(env, format, level string, output io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level:     levelFor(env, level),
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			case slog.SourceKey:
				// keep only file:line
				if src, ok := a.Value.Any().(*slog.Source); ok {
					file := src.File
					if idx := strings.LastIndex(file, "/"); idx >= 0 {
						file = file[idx+1:]
					}
					a.Value = slog.StringValue(fmt.Sprintf("%s:%d", file, src.Line))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if env == "production" || format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// NewDefault creates a logger writing to stdout.
func NewDefault(env string) *Logger {
	return New(env, os.Stdout)
}

func levelFor(env, level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if env == "production" {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// WithContext attaches request_id and user_id from ctx when present.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	result := l
	if requestID := ctx.Value(RequestIDKey); requestID != nil {
		result = &Logger{Logger: result.With("request_id", requestID)}
	}
	if userID := ctx.Value(UserIDKey); userID != nil {
		result = &Logger{Logger: result.With("user_id", userID)}
	}
	return result
}

// WithField returns a logger with one extra field.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{Logger: l.With(key, value)}
}

// WithComponent tags every record with the emitting component.
func (l *Logger) WithComponent(name string) *Logger {
	return l.WithField("component", name)
}

// WithError returns a logger carrying err under the "error" key.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.With("error", err.Error())}
}

// WithDuration records d in milliseconds.
func (l *Logger) WithDuration(d time.Duration) *Logger {
	return &Logger{Logger: l.With("duration_ms", d.Milliseconds())}
}
