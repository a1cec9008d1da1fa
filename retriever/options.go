package retriever

import "context"

type Option func(*Options)

type Options struct {
	TopK    int
	Lambda  float64
	Context context.Context
}

func WithTopK(k int) Option {
	return func(o *Options) {
		o.TopK = k
	}
}

func WithLambda(lambda float64) Option {
	return func(o *Options) {
		o.Lambda = lambda
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		TopK:    5,
		Lambda:  0.7,
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type SearchOption func(*SearchOptions)

type SearchOptions struct {
	TopK       int
	Filter     map[string]string
	Lambda     float64
	DisableMMR bool
}

func WithSearchTopK(k int) SearchOption {
	return func(o *SearchOptions) {
		o.TopK = k
	}
}

func WithFilter(filter map[string]string) SearchOption {
	return func(o *SearchOptions) {
		o.Filter = filter
	}
}

func WithSearchLambda(lambda float64) SearchOption {
	return func(o *SearchOptions) {
		o.Lambda = lambda
	}
}

func WithoutMMR() SearchOption {
	return func(o *SearchOptions) {
		o.DisableMMR = true
	}
}
