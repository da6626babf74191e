// Package dashboard runs a list of chart specs over one dataset and
// renders every result into a panel.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/engine"
	"github.com/barasalah2/chartflow/render"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ============================================================================
// BOARD - Orchestrates process + render per chart spec
// ============================================================================
// Compose fans specs out to a bounded worker group. Output order always
// matches spec order. A spec that fails becomes a panel carrying its error;
// only cancellation aborts the board.
// ============================================================================

// Source is a dataset that can fingerprint its contents.
type Source interface {
	dataset.View
	Fingerprint() uint64
}

// Panel is one rendered chart of a board.
type Panel struct {
	Index   int              `json:"index"`
	Spec    engine.ChartSpec `json:"spec"`
	Element *render.Element  `json:"element,omitempty"`
	Table   *render.Table    `json:"table,omitempty"`
	Error   string           `json:"error,omitempty"`
	Cached  bool             `json:"cached"`
}

// OK reports whether the panel rendered.
func (p Panel) OK() bool { return p.Error == "" && p.Element != nil }

// Board composes panels. Safe for concurrent use.
type Board struct {
	cfg   *config
	cache *panelCache
}

var errMissingType = errors.New("chart type is required")

// New creates a Board.
func New(opts ...Option) *Board {
	cfg := applyOptions(opts)
	return &Board{cfg: cfg, cache: newPanelCache(cfg.cacheSize)}
}

// Compose processes and renders every spec over src.
func (b *Board) Compose(ctx context.Context, src Source, specs []engine.ChartSpec) ([]Panel, error) {
	panels := make([]Panel, len(specs))
	if len(specs) == 0 {
		return panels, nil
	}
	fingerprint := src.Fingerprint()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.workers)
	for i, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := cacheKey(fingerprint, spec)
			if p, ok := b.cache.get(key); ok {
				p.Index, p.Cached = i, true
				panels[i] = p
				return nil
			}
			p := b.panel(src, spec)
			p.Index = i
			if p.Error == "" {
				b.cache.put(key, p)
			}
			panels[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compose board: %w", err)
	}

	failed := 0
	for _, p := range panels {
		if p.Error != "" {
			failed++
		}
	}
	b.cfg.logger.Info("composed board",
		zap.Int("panels", len(panels)),
		zap.Int("failed", failed),
		zap.Int("rows", src.Len()))
	return panels, nil
}

func (b *Board) panel(src dataset.View, spec engine.ChartSpec) (p Panel) {
	p.Spec = spec
	defer func() {
		if v := recover(); v != nil {
			b.cfg.logger.Error("chart processing panicked", zap.Any("panic", v), zap.String("type", spec.Type))
			p.Element, p.Table = nil, nil
			p.Error = fmt.Sprintf("processing %s chart failed: %v", spec.Type, v)
		}
	}()

	if spec.Type == "" {
		p.Error = errMissingType.Error()
		return p
	}

	opts := append([]engine.Option{engine.WithLogger(b.cfg.logger)}, b.cfg.engineOpts...)
	r, err := engine.Process(spec, src, opts...)
	if err != nil {
		b.cfg.logger.Warn("chart spec rejected", zap.Error(err), zap.String("type", spec.Type))
		p.Error = err.Error()
		return p
	}

	el := render.Build(r)
	p.Spec = r.Spec
	p.Element = &el
	p.Table = render.BuildTable(r)
	return p
}
