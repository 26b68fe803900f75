package generator

import "context"

type Option func(*Options)

type Options struct {
	ApiKey       string
	Model        string
	BaseURL      string
	Temperature  float32
	MaxTokens    int
	Stop         []string
	Context      context.Context
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

// WithBaseURL points the client at an API compatible endpoint, e.g. Groq's
// https://api.groq.com/openai/v1.
func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

func WithTemperature(temperature float32) Option {
	return func(o *Options) {
		o.Temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

// WithStop sets sequences at which the model stops generating.
func WithStop(stop ...string) Option {
	return func(o *Options) {
		o.Stop = stop
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxTokens: 1024,
		Context:   context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
