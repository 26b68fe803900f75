package toolprovider

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	Addrs      []string
	Endpoint   string
	Binary     string
	Timeout    time.Duration
	MaxResults int
	Context    context.Context
}

func WithAddrs(addrs ...string) Option {
	return func(o *Options) {
		o.Addrs = addrs
	}
}

// WithEndpoint overrides the remote address a tool talks to.
func WithEndpoint(endpoint string) Option {
	return func(o *Options) {
		o.Endpoint = endpoint
	}
}

func WithBinary(binary string) Option {
	return func(o *Options) {
		o.Binary = binary
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

func WithMaxResults(n int) Option {
	return func(o *Options) {
		o.MaxResults = n
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
