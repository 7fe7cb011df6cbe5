// Package cli implements the hmaputil command-line interface.
//
// This package provides commands for rendering heightmap products, inspecting
// slope statistics, serving the pipeline over HTTP and managing the local
// preferences and bundle cache. The CLI is built using cobra and logs via
// the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Produce RG, relief, mask and custom color images
//   - stats: Summarize the normalized slope and suggest mask bounds
//   - serve: Run the HTTP API
//   - config: Show or reset the remembered parameters
//   - cache: Manage the bundle cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports per-step timings through the pipeline hooks.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hmaputil/pkg/observability"
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
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Computed slope (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, p.elapsed())
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

// =============================================================================
// Hook Logging
// =============================================================================

// logHooks reports pipeline and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnRunStart(_ context.Context, runID string, width, height int) {
	h.logger.Debug("run started", "run", runID, "width", width, "height", height)
}

func (h logHooks) OnRunComplete(_ context.Context, runID string, artifacts int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("run failed", "run", runID, "artifacts", artifacts, "duration", d, "error", err)
		return
	}
	h.logger.Debug("run complete", "run", runID, "artifacts", artifacts, "duration", d)
}

func (h logHooks) OnStepStart(context.Context, string, string) {}

func (h logHooks) OnStepComplete(_ context.Context, runID, step string, d time.Duration, err error) {
	h.logger.Debug("step", "run", runID, "step", step, "duration", d, "error", err)
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

// EnableHookLogging registers hooks that log pipeline and cache events
// through c.Logger.
func (c *CLI) EnableHookLogging() {
	h := logHooks{logger: c.Logger}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
}
