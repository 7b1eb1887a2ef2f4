package plugins

import (
	"context"
	"log/slog"

	"mediaorg/internal/logging"
	"mediaorg/internal/media"
	"mediaorg/internal/notifications"
)

// Notify publishes an ntfy message for every imported file and a summary at
// the end of each import run. It keeps no queue, so batch runs have nothing
// to send.
type Notify struct {
	service notifications.Service
	dryRun  bool
	printer *dryRunPrinter
	logger  *slog.Logger
}

// NewNotify wraps a notification service.
func NewNotify(service notifications.Service, deps Deps) *Notify {
	return &Notify{
		service: service,
		dryRun:  deps.DryRun,
		printer: &dryRunPrinter{out: deps.Out, label: "Notify"},
		logger:  logging.NewComponentLogger(deps.Logger, "notify"),
	}
}

func (n *Notify) Name() string { return "notify" }

func (n *Notify) Before(context.Context, string, string, string, media.Metadata) error {
	return nil
}

func (n *Notify) After(ctx context.Context, source, destRoot, final string, md media.Metadata) error {
	if n.dryRun {
		n.printer.printf("notify: %s", final)
		return nil
	}
	return n.service.Publish(ctx, notifications.EventFileImported, notifications.Payload{
		"source":      source,
		"destination": final,
	})
}

// Batch is a no-op; the import summary is sent by Finish.
func (n *Notify) Batch(context.Context) (bool, int, error) {
	return true, 0, nil
}

// Finish posts the import summary.
func (n *Notify) Finish(ctx context.Context, stats RunStats) error {
	if n.dryRun {
		n.printer.printf("send import summary: %d imported, %d failed", stats.Imported, stats.Failed)
		return nil
	}
	return n.service.Publish(ctx, notifications.EventImportCompleted, notifications.Payload{
		"imported": stats.Imported,
		"failed":   stats.Failed,
		"duration": stats.Elapsed,
	})
}
