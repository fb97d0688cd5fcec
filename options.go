package fskit

import "io/fs"

// Option represents a configuration option
type Option func(*Options)

// Options contains all possible options for file operations
type Options struct {
	// Mode is the permission mode applied to directories created by
	// CreateDir
	Mode fs.FileMode

	// Recursive makes CreateDir create every missing ancestor directory
	Recursive bool

	// Overwrite determines whether Copy may replace an existing destination
	Overwrite bool
}

// NewOptions returns Options seeded with the contract defaults and the given
// options applied on top. Every driver resolves its options through this so
// defaults stay uniform across backends.
func NewOptions(options ...Option) *Options {
	opts := &Options{
		Mode:      0o777,
		Overwrite: true,
	}
	for _, option := range options {
		option(opts)
	}
	return opts
}

// WithMode sets the permission mode for created directories
func WithMode(mode fs.FileMode) Option {
	return func(o *Options) {
		o.Mode = mode
	}
}

// WithRecursive enables or disables creating missing ancestor directories
func WithRecursive(recursive bool) Option {
	return func(o *Options) {
		o.Recursive = recursive
	}
}

// WithOverwrite enables or disables overwriting an existing copy destination
func WithOverwrite(overwrite bool) Option {
	return func(o *Options) {
		o.Overwrite = overwrite
	}
}
