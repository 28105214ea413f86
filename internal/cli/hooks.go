package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/unolab/unolayout/pkg/observability"
)

// logHooks reports pipeline and cache events as debug log lines. It is
// registered when --verbose is set.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.PipelineHooks = logHooks{}
	_ observability.CacheHooks    = logHooks{}
)

func (h logHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("load start", "source", source)
}

func (h logHooks) OnLoadComplete(_ context.Context, recipe string, placements int, d time.Duration, err error) {
	h.finish("load", err, "recipe", recipe, "placements", placements, "took", d)
}

func (h logHooks) OnBuildStart(_ context.Context, recipe string) {
	h.logger.Debug("build start", "recipe", recipe)
}

func (h logHooks) OnBuildComplete(_ context.Context, recipe string, cells int, d time.Duration, err error) {
	h.finish("build", err, "recipe", recipe, "cells", cells, "took", d)
}

func (h logHooks) OnExportStart(_ context.Context, formats []string) {
	h.logger.Debug("export start", "formats", formats)
}

func (h logHooks) OnExportComplete(_ context.Context, formats []string, bytes int, d time.Duration, err error) {
	h.finish("export", err, "formats", formats, "bytes", bytes, "took", d)
}

func (h logHooks) OnCacheHit(_ context.Context, format string) {
	h.logger.Debug("cache hit", "format", format)
}

func (h logHooks) OnCacheMiss(_ context.Context, format string) {
	h.logger.Debug("cache miss", "format", format)
}

func (h logHooks) OnCacheSet(_ context.Context, format string, size int) {
	h.logger.Debug("cache set", "format", format, "bytes", size)
}

func (h logHooks) finish(stage string, err error, keyvals ...any) {
	if err != nil {
		h.logger.Debug(stage+" failed", append(keyvals, "err", err)...)
		return
	}
	h.logger.Debug(stage+" done", keyvals...)
}

// registerHooks installs logHooks when the logger shows debug output.
func (c *CLI) registerHooks() {
	if c.Logger.GetLevel() > log.DebugLevel {
		return
	}
	h := logHooks{logger: c.Logger}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
}
