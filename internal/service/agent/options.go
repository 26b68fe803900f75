package agent

import (
	"github.com/rs/zerolog"
	"github.com/w-h-a/groomwise/prompt"
)

type Option func(*Options)

type Options struct {
	MaxIterations       int
	HandleParsingErrors bool
	Verbose             bool
	PromptOptions       []prompt.Option
	Logger              zerolog.Logger
}

func WithMaxIterations(n int) Option {
	return func(o *Options) {
		o.MaxIterations = n
	}
}

// WithHandleParsingErrors feeds unparseable replies back to the model as an
// observation instead of failing the run.
func WithHandleParsingErrors(handle bool) Option {
	return func(o *Options) {
		o.HandleParsingErrors = handle
	}
}

func WithVerbose(verbose bool) Option {
	return func(o *Options) {
		o.Verbose = verbose
	}
}

func WithPromptOptions(opts ...prompt.Option) Option {
	return func(o *Options) {
		o.PromptOptions = append(o.PromptOptions, opts...)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxIterations:       15,
		HandleParsingErrors: true,
		Logger:              zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
