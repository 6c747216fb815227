// Package logger is a thin slog wrapper emitting one JSON object per line.
// Field-chaining helpers (WithModule, WithRequestID, WithError) keep call
// sites short; log aggregation expects the timestamp/level/message key names
// produced here.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with chat-bot specific field helpers.
type Logger struct {
	*slog.Logger
}

// New returns a JSON logger writing to stdout at the given level.
// Unknown level strings fall back to info.
func New(level string) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter is New with an explicit destination, used by tests.
func NewWithWriter(level string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(level),
		ReplaceAttr: renameStandardKeys,
	}
	return &Logger{Logger: slog.New(slog.NewJSONHandler(w, opts))}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// renameStandardKeys maps slog's default attribute names onto the key
// names our log pipeline indexes. Levels are lowercased, with WARN
// spelled out as "warning".
func renameStandardKeys(groups []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.MessageKey:
		a.Key = "message"
	case slog.LevelKey:
		a.Key = "level"
		if a.Value.String() == "WARN" {
			a.Value = slog.StringValue("warning")
		} else {
			a.Value = slog.StringValue(strings.ToLower(a.Value.String()))
		}
	}
	return a
}

// WithModule tags every entry with the chat module it came from.
func (l *Logger) WithModule(module string) *Logger {
	return &Logger{Logger: l.With("module", module)}
}

// WithRequestID tags entries with the webhook request ID.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.With("request_id", requestID)}
}

// WithError attaches err under the "error" key.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.With("error", err)}
}

// WithField attaches a single extra key.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{Logger: l.With(key, value)}
}

// WithFields attaches several extra keys at once.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.With(args...)}
}

// Fatal logs a message at error level and exits the process.
// Only for startup failures; request handling must never call it.
func (l *Logger) Fatal(msg string) {
	l.Error(msg)
	os.Exit(1)
}
