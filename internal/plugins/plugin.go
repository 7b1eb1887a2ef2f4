package plugins

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"mediaorg/internal/logging"
	"mediaorg/internal/media"
	"mediaorg/internal/services"
)

// Plugin hooks into each placed file and runs deferred work in batch.
//
// Before may veto a file by returning an error wrapping services.ErrPluginHard
// (see HardFailure); any other error is logged and ignored. After errors are
// never fatal.
type Plugin interface {
	Name() string
	Before(ctx context.Context, source, destRoot, planned string, md media.Metadata) error
	After(ctx context.Context, source, destRoot, final string, md media.Metadata) error
	Batch(ctx context.Context) (bool, int, error)
}

// Finisher is implemented by plugins that report once an import run ends.
type Finisher interface {
	Finish(ctx context.Context, stats RunStats) error
}

// RunStats summarizes an import run for Finisher plugins.
type RunStats struct {
	Imported int
	Failed   int
	Skipped  int
	Elapsed  string
}

// HardFailure returns an error that vetoes the current file.
func HardFailure(plugin, message string) error {
	return services.Wrap(services.ErrPluginHard, "plugin", plugin, message, nil)
}

// BatchResult is the outcome of one plugin's Batch call.
type BatchResult struct {
	Plugin string
	OK     bool
	Count  int
	Err    error
}

// Set runs plugins in configuration order.
type Set struct {
	plugins []Plugin
	logger  *slog.Logger
}

// NewSet wraps plugins in the given order.
func NewSet(logger *slog.Logger, plugins ...Plugin) *Set {
	return &Set{plugins: plugins, logger: logging.NewComponentLogger(logger, "plugins")}
}

// Names lists the plugins in run order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.plugins))
	for _, p := range s.plugins {
		names = append(names, p.Name())
	}
	return names
}

// RunBefore calls Before on every plugin. The first hard failure stops the
// run and is returned; soft failures are logged.
func (s *Set) RunBefore(ctx context.Context, source, destRoot, planned string, md media.Metadata) error {
	if s == nil {
		return nil
	}
	for _, p := range s.plugins {
		err := p.Before(ctx, source, destRoot, planned, md)
		if err == nil {
			continue
		}
		if errors.Is(err, services.ErrPluginHard) {
			return fmt.Errorf("%s: %w", p.Name(), err)
		}
		s.warn(ctx, p, "before", err)
	}
	return nil
}

// RunAfter calls After on every plugin, logging failures.
func (s *Set) RunAfter(ctx context.Context, source, destRoot, final string, md media.Metadata) {
	if s == nil {
		return
	}
	for _, p := range s.plugins {
		if err := p.After(ctx, source, destRoot, final, md); err != nil {
			s.warn(ctx, p, "after", err)
		}
	}
}

// RunBatch calls Batch on every plugin and collects the results.
func (s *Set) RunBatch(ctx context.Context) []BatchResult {
	if s == nil {
		return nil
	}
	results := make([]BatchResult, 0, len(s.plugins))
	for _, p := range s.plugins {
		ok, count, err := p.Batch(ctx)
		if err != nil {
			s.warn(ctx, p, "batch", err)
			ok = false
		}
		results = append(results, BatchResult{Plugin: p.Name(), OK: ok, Count: count, Err: err})
	}
	return results
}

// RunFinish notifies every Finisher plugin that the run ended.
func (s *Set) RunFinish(ctx context.Context, stats RunStats) {
	if s == nil {
		return
	}
	for _, p := range s.plugins {
		if f, ok := p.(Finisher); ok {
			if err := f.Finish(ctx, stats); err != nil {
				s.warn(ctx, p, "finish", err)
			}
		}
	}
}

func (s *Set) warn(ctx context.Context, p Plugin, hook string, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, s.logger), "plugin hook failed", "plugin_soft_failure",
		logging.String("plugin", p.Name()),
		logging.String("hook", hook),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the plugin configuration"),
		logging.String(logging.FieldImpact, "file processed without this plugin"),
	)
}

// dryRunPrinter serializes "[DRY-RUN][Plugin] Would ..." lines.
type dryRunPrinter struct {
	mu    sync.Mutex
	out   io.Writer
	label string
}

func (p *dryRunPrinter) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "[DRY-RUN][%s] Would %s\n", p.label, fmt.Sprintf(format, args...))
}
