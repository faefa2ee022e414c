package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ladderkit/pkg/cache"
	"github.com/matzehuels/ladderkit/pkg/ladder"
	"github.com/matzehuels/ladderkit/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and HTTP server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Export validates and lays out r, then renders the requested formats.
func (r *Runner) Export(ctx context.Context, rung *ladder.Rung, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	result := &Result{Artifacts: make(map[string][]byte)}

	layoutStart := time.Now()
	laid, err := Layout(ctx, rung, opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Stats = Stats{
		Rungs:      1,
		NodeCount:  len(laid.Nodes),
		EdgeCount:  len(laid.Edges),
		LayoutTime: time.Since(layoutStart),
	}
	r.Logger.Debug("computed layout",
		"rung", laid.ID,
		"nodes", result.Stats.NodeCount,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	for _, format := range opts.Formats {
		data, hit, err := r.renderCached(ctx, laid, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		result.Artifacts[format] = data
		if hit {
			result.CacheHits = append(result.CacheHits, format)
		}
	}
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("exported rung",
		"rung", laid.ID,
		"formats", opts.Formats,
		"cached", result.CacheHits,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// ExportDiagram validates and lays out every rung of d, then renders the
// requested formats of the whole diagram.
func (r *Runner) ExportDiagram(ctx context.Context, d *ladder.Diagram, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	result := &Result{Artifacts: make(map[string][]byte)}

	layoutStart := time.Now()
	laid, err := LayoutDiagram(ctx, d, opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Stats.Rungs = len(laid.Rungs)
	for _, rung := range laid.Rungs {
		result.Stats.NodeCount += len(rung.Nodes)
		result.Stats.EdgeCount += len(rung.Edges)
	}
	result.Stats.LayoutTime = time.Since(layoutStart)

	renderStart := time.Now()
	for _, format := range opts.Formats {
		start := time.Now()
		data, err := RenderDiagram(laid, format, opts)
		observability.Pipeline().OnExport(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		result.Artifacts[format] = data
	}
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("exported diagram",
		"diagram", laid.Name,
		"rungs", result.Stats.Rungs,
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// renderCached renders one format, going through the cache for the formats
// Graphviz produces.
func (r *Runner) renderCached(ctx context.Context, rung *ladder.Rung, format string, opts Options) ([]byte, bool, error) {
	start := time.Now()
	if !graphviz(format) {
		data, err := Render(rung, format, opts)
		observability.Pipeline().OnExport(ctx, format, len(data), time.Since(start), err)
		return data, false, err
	}

	key := r.Keyer.ArtifactKey(cache.Hash([]byte(dot(rung, opts))), cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: opts.Detailed,
	})
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, format)
			observability.Pipeline().OnExport(ctx, format, len(data), time.Since(start), nil)
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, format)
	}

	data, err := Render(rung, format, opts)
	observability.Pipeline().OnExport(ctx, format, len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		r.Logger.Warn("cache write failed", "format", format, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, format, len(data))
	}
	return data, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
