package engine

import (
	"fmt"

	"github.com/barasalah2/chartflow/layout"
	"go.uber.org/zap"
)

// ============================================================================
// ENGINE OPTIONS - Functional options for Process()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	logger        *zap.Logger
	bubbleMaxArea float64
	treemapWidth  float64
	treemapHeight float64
	minCell       float64
	strictKinds   bool
}

// WithLogger routes processor warnings to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBubbleMaxArea sets the area given to the largest bubble (default 2000).
func WithBubbleMaxArea(area float64) Option {
	return func(c *config) {
		if area > 0 {
			c.bubbleMaxArea = area
		}
	}
}

// WithTreemapSize sets the canvas the treemap layout fills (default 800×500).
func WithTreemapSize(width, height float64) Option {
	return func(c *config) {
		if width > 0 && height > 0 {
			c.treemapWidth, c.treemapHeight = width, height
		}
	}
}

// WithMinCell sets the minimum treemap rectangle side (default 10).
func WithMinCell(side float64) Option {
	return func(c *config) {
		c.minCell = side
	}
}

// WithStrictKinds makes Process return ErrUnknownKind instead of falling
// back to a bar chart.
func WithStrictKinds() Option {
	return func(c *config) {
		c.strictKinds = true
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		logger:        zap.NewNop(),
		bubbleMaxArea: 2000,
		treemapWidth:  800,
		treemapHeight: 500,
		minCell:       layout.DefaultMinCell,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func sprintf(format string, args ...any) string { return fmt.Sprintf(format, args...) }

func zapKind(k Kind) zap.Field { return zap.String("kind", string(k)) }

func zapTitle(t string) zap.Field { return zap.String("title", t) }
