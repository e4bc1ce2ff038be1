package cmd

import (
	"context"

	log "github.com/rs/zerolog"
)

// CommonOptions carries values every command needs, following the
// functional-options shape the teacher uses throughout.
type CommonOptions struct {
	Ctx    context.Context
	Logger log.Logger
}

type Option func(o *CommonOptions)

func NewCommonOptions(opts ...Option) *CommonOptions {
	o := new(CommonOptions)
	for _, f := range opts {
		f(o)
	}
	return o
}

func WithContext(ctx context.Context) Option {
	return func(o *CommonOptions) {
		o.Ctx = ctx
	}
}

func WithLogger(logger log.Logger) Option {
	return func(o *CommonOptions) {
		o.Logger = logger
	}
}
