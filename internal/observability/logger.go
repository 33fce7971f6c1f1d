package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phsym/console-slog"
	slogmulti "github.com/samber/slog-multi"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
)

// basic global logger, JSON to stdout until Init runs.
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// LogOptions selects the handlers Init installs.
type LogOptions struct {
	Format string // "console" or "json"
	Level  string
	// File, when set, also receives every record as JSON.
	File io.Writer
}

// Init replaces the process logger. The stderr handler follows opts.Format;
// an optional file sink is fanned out next to it.
func Init(opts LogOptions) *slog.Logger {
	level := ParseLevel(opts.Level)

	var primary slog.Handler
	switch opts.Format {
	case "json":
		primary = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	default:
		primary = console.NewHandler(os.Stderr, &console.HandlerOptions{
			AddSource: level == slog.LevelDebug,
			Level:     level,
		})
	}

	handler := primary
	if opts.File != nil {
		handler = slogmulti.Fanout(
			primary,
			slog.NewJSONHandler(opts.File, &slog.HandlerOptions{Level: level}),
		)
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// SetLogger swaps the process logger, mostly for tests and embedding.
func SetLogger(l *slog.Logger) {
	logger = l
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewNop returns a logger that drops everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Logger() *slog.Logger {
	return logger
}

// WithRequestID stores a request_id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// RequestIDFromContext returns the request_id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	reqID, _ := ctx.Value(ctxKeyRequestID).(string)
	return reqID
}

// LoggerFromContext adds request_id if present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	reqID := RequestIDFromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}
