package shared

import (
	"context"

	"go.uber.org/zap"
)

type loggerKey struct{}

// WithLogger stores a request scoped logger in ctx.
func WithLogger(ctx context.Context, log *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

// Logger returns the request scoped logger, or fallback when none was set.
func Logger(ctx context.Context, fallback *zap.SugaredLogger) *zap.SugaredLogger {
	if log, ok := ctx.Value(loggerKey{}).(*zap.SugaredLogger); ok && log != nil {
		return log
	}
	return fallback
}

// NewLogger builds the process logger: JSON production output, or the
// human readable development encoder when debug is set.
func NewLogger(debug bool) (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
