package http

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/w-h-a/groomwise/server"
)

type middlewareKey struct{}

func WithMiddleware(ms ...func(h http.Handler) http.Handler) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, middlewareKey{}, ms)
	}
}

func MiddlewareFrom(ctx context.Context) ([]func(h http.Handler) http.Handler, bool) {
	ms, ok := ctx.Value(middlewareKey{}).([]func(h http.Handler) http.Handler)
	return ms, ok
}

type loggerKey struct{}

func WithLogger(logger zerolog.Logger) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, loggerKey{}, logger)
	}
}

func LoggerFrom(ctx context.Context) (zerolog.Logger, bool) {
	logger, ok := ctx.Value(loggerKey{}).(zerolog.Logger)
	return logger, ok
}
