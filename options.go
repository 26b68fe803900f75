package groomwise

import "github.com/rs/zerolog"

type Option func(*Options)

type Options struct {
	RecallK int
	Logger  zerolog.Logger
}

// WithRecallK sets how many past memories are folded into each turn.
func WithRecallK(k int) Option {
	return func(o *Options) {
		o.RecallK = k
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		RecallK: 3,
		Logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
