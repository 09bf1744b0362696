package log

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds the process logger. Lambda ships stdout to CloudWatch, so output
// stays JSON rather than the console writer.
func New(w io.Writer, debug bool) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewContextWithLogger installs the process logger globally and in ctx.
func NewContextWithLogger(ctx context.Context, debug bool) context.Context {
	logger := New(os.Stdout, debug)
	log.Logger = logger
	return logger.WithContext(ctx)
}

// FromCtx returns the logger stored in ctx, or a disabled logger when none is set.
func FromCtx(ctx context.Context) *zerolog.Logger {
	return log.Ctx(ctx)
}
