package dashboard

import (
	"github.com/barasalah2/chartflow/engine"
	"go.uber.org/zap"
)

// Option configures a Board.
type Option func(*config)

type config struct {
	logger     *zap.Logger
	workers    int
	cacheSize  int
	engineOpts []engine.Option
}

// WithLogger sets the board logger. It is also handed to the engine.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithWorkers bounds how many specs are processed at once (default 4).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithCacheSize bounds the number of memoized panels (default 256, 0
// disables the cache).
func WithCacheSize(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.cacheSize = n
		}
	}
}

// WithEngineOptions passes options through to engine.Process.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(c *config) {
		c.engineOpts = append(c.engineOpts, opts...)
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		logger:    zap.NewNop(),
		workers:   4,
		cacheSize: 256,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
