package logging

import (
	"context"

	"github.com/charmbracelet/log"
)

// loggerKey keys the command logger in a context.
type loggerKey struct{}

// WithLogger attaches logger to ctx. Sessions and scan tasks started under the
// returned context log through it.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger attached to ctx, or Default.
func FromContext(ctx context.Context) *log.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*log.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}
