package scan

import (
	pkgerrors "github.com/joe/efs/pkg/errors"
	"github.com/joe/efs/pkg/filesystem"
)

// Option configures a scan.
type Option func(*config)

type config struct {
	recursive bool
	args      Args
	fsys      filesystem.FileSystem
	policy    pkgerrors.Policy
	handler   *pkgerrors.Handler
}

func newConfig(opts []Option) *config {
	cfg := &config{
		args:   Args{},
		policy: pkgerrors.Log,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.fsys == nil {
		cfg.fsys = filesystem.NewRealFileSystem()
	}

	if cfg.handler == nil {
		cfg.handler = pkgerrors.DefaultHandler()
	}

	return cfg
}

// WithArgs passes args to every callback invocation.
func WithArgs(args Args) Option {
	return func(c *config) {
		if args != nil {
			c.args = args
		}
	}
}

// WithFileSystem scans fsys instead of the local disk.
func WithFileSystem(fsys filesystem.FileSystem) Option {
	return func(c *config) {
		c.fsys = fsys
	}
}

// WithHandler reports failures through handler.
func WithHandler(handler *pkgerrors.Handler) Option {
	return func(c *config) {
		c.handler = handler
	}
}

// WithPolicy sets what happens to a traversal failure. The default is Log.
func WithPolicy(policy pkgerrors.Policy) Option {
	return func(c *config) {
		c.policy = policy
	}
}

// WithRecursive descends into subdirectories.
func WithRecursive(recursive bool) Option {
	return func(c *config) {
		c.recursive = recursive
	}
}
