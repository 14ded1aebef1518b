package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const requestIDKey = "request_id"

var defaultLogger zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	defaultLogger = New(os.Stdout, zerolog.DebugLevel)
	zerolog.DefaultContextLogger = &defaultLogger
}

// New builds a JSON logger writing to w at the given level.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// SetLevel parses level ("debug", "info", ...) and applies it to the default logger.
// Unknown levels leave the logger at info.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	defaultLogger = defaultLogger.Level(lvl)
	zerolog.DefaultContextLogger = &defaultLogger
}

// FromContext returns the logger from context, or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext returns a new context that carries the given logger.
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// WithRequestID returns a new context whose logger includes the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	l := FromContext(ctx).With().Str(requestIDKey, id).Logger()
	return WithContext(ctx, l)
}

// Error logs with error level. args are alternating key-value pairs (e.g. "error", err).
func Error(ctx context.Context, message string, args ...interface{}) {
	FromContext(ctx).Error().Fields(args).Msg(message)
}

// Info logs with info level. args are alternating key-value pairs.
func Info(ctx context.Context, message string, args ...interface{}) {
	FromContext(ctx).Info().Fields(args).Msg(message)
}

// Debug logs with debug level. args are alternating key-value pairs.
func Debug(ctx context.Context, message string, args ...interface{}) {
	FromContext(ctx).Debug().Fields(args).Msg(message)
}

// Warn logs with warn level. args are alternating key-value pairs.
func Warn(ctx context.Context, message string, args ...interface{}) {
	FromContext(ctx).Warn().Fields(args).Msg(message)
}
