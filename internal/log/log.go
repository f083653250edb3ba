package log

import (
	"context"
	"io"

	"github.com/hashicorp/go-hclog"
)

const Name = "starknet-deploy"

type ctxLogKey struct{}

// New returns the process logger writing to w. Unknown levels fall back to info.
func New(level string, w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   Name,
		Level:  hclog.LevelFromString(level),
		Output: w,
		Color:  hclog.AutoColor,
	})
}

func WithLogger(ctx context.Context, logger hclog.Logger) context.Context {
	return context.WithValue(ctx, ctxLogKey{}, logger)
}

// LoggerFromContext returns the logger stored in ctx, or a logger that
// discards everything.
func LoggerFromContext(ctx context.Context) hclog.Logger {
	if logger, ok := ctx.Value(ctxLogKey{}).(hclog.Logger); ok {
		return logger
	}
	return hclog.NewNullLogger()
}
