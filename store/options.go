package store

import "context"

type Option func(*Options)

type Options struct {
	Location   string
	Database   string
	Collection string
	Index      string
	Context    context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithDatabase(db string) Option {
	return func(o *Options) {
		o.Database = db
	}
}

func WithCollection(coll string) Option {
	return func(o *Options) {
		o.Collection = coll
	}
}

func WithIndex(index string) Option {
	return func(o *Options) {
		o.Index = index
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
