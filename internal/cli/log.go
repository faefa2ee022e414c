package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ladderkit/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Exported 3 rungs (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logHooks reports observability events as debug log lines.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) logHooks {
	return logHooks{logger: l.WithPrefix("hooks")}
}

func (h logHooks) OnEdit(_ context.Context, op string, nodes int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("edit failed", "op", op, "error", err)
		return
	}
	h.logger.Debug("edit", "op", op, "nodes", nodes, "took", d)
}

func (h logHooks) OnLayout(_ context.Context, nodes int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("layout failed", "error", err)
		return
	}
	h.logger.Debug("layout", "nodes", nodes, "took", d)
}

func (h logHooks) OnExport(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("export failed", "format", format, "error", err)
		return
	}
	h.logger.Debug("export", "format", format, "bytes", size, "took", d)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, route string) {}

func (h logHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "took", d)
}

var (
	_ observability.EditorHooks   = logHooks{}
	_ observability.PipelineHooks = logHooks{}
	_ observability.CacheHooks    = logHooks{}
	_ observability.HTTPHooks     = logHooks{}
)
