package embedder

import "context"

type Option func(*Options)

type Options struct {
	ApiKey    string
	Model     string
	BaseURL   string
	Dimension int
	Context   context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

// WithDimension fixes the vector size every stored record must have.
func WithDimension(dimension int) Option {
	return func(o *Options) {
		o.Dimension = dimension
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Dimension: 384,
		Context:   context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
