package storer

import "context"

type Option func(*Options)

type Options struct {
	Location   string
	ApiKey     string
	Collection string
	VectorSize int
	Context    context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithCollection(collection string) Option {
	return func(o *Options) {
		o.Collection = collection
	}
}

// WithVectorSize pins the embedding dimension. Zero lets a store infer it
// from the first record it sees.
func WithVectorSize(size int) Option {
	return func(o *Options) {
		o.VectorSize = size
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Collection: "groomwise_memories",
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
