package console

import (
	"github.com/rs/zerolog"
)

type Option func(*Options)

type Options struct {
	ContinueOnError bool
	ProbeQuery      string
	ProbeK          int
	Logger          zerolog.Logger
}

// WithContinueOnError keeps the loop going after a failed turn.
func WithContinueOnError(cont bool) Option {
	return func(o *Options) {
		o.ContinueOnError = cont
	}
}

// WithProbe prints the k memories closest to query after every turn.
func WithProbe(query string, k int) Option {
	return func(o *Options) {
		o.ProbeQuery = query
		o.ProbeK = k
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		ProbeK: 3,
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
