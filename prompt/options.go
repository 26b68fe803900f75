package prompt

type Option func(*Options)

type Options struct {
	SearchTool string
	PythonTool string
}

// WithExampleTools names the tools used in the worked tool-use example.
func WithExampleTools(search, python string) Option {
	return func(o *Options) {
		o.SearchTool = search
		o.PythonTool = python
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		SearchTool: "duckduckgo_search",
		PythonTool: "Python_REPL",
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
