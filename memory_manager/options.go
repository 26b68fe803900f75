package memorymanager

import (
	"github.com/rs/zerolog"
	"github.com/w-h-a/groomwise/memory_manager/providers/embedder"
	"github.com/w-h-a/groomwise/memory_manager/providers/storer"
)

type Option func(*Options)

type Options struct {
	Storer   storer.Storer
	Embedder embedder.Embedder
	Logger   zerolog.Logger
}

func WithStorer(storer storer.Storer) Option {
	return func(o *Options) {
		o.Storer = storer
	}
}

func WithEmbedder(embedder embedder.Embedder) Option {
	return func(o *Options) {
		o.Embedder = embedder
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type RememberOption func(*RememberOptions)

type RememberOptions struct {
	Metadata map[string]any
}

func WithMetadata(metadata map[string]any) RememberOption {
	return func(o *RememberOptions) {
		o.Metadata = metadata
	}
}

func NewRememberOptions(opts ...RememberOption) RememberOptions {
	options := RememberOptions{
		Metadata: map[string]any{},
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
