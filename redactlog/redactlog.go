// Package redactlog provides the structured logging the driver and the
// cmd/imagedephi-redact CLI use, the same role the teacher's
// go.airbusds-geo.com/log wrapper plays around cmd/tiler: a console logger
// by default, switched to JSON via Structured() when running unattended.
package redactlog

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

var base = mustDevelopment()

func mustDevelopment() *zap.Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return l
}

// Structured swaps the process-wide base logger to JSON output, mirroring
// the teacher's log.Structured() toggle behind cmd/tiler's --verbose flag.
func Structured() {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	base = l
}

// WithLogger attaches l to ctx, returning a derived context the rest of a
// request/command can carry.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// Logger returns the logger attached to ctx, or the process-wide base
// logger if none was attached — same retrieval shape as the teacher's
// log.Logger(ctx).
func Logger(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return base
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() error {
	return base.Sync()
}
