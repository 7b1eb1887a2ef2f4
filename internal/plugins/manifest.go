package plugins

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"mediaorg/internal/fileutil"
	"mediaorg/internal/media"
	"mediaorg/internal/naming"
	"mediaorg/internal/services"
)

var manifestHeader = []string{"source", "destination", "checksum", "date"}

// Manifest appends one CSV row per imported file.
type Manifest struct {
	path    string
	dryRun  bool
	printer *dryRunPrinter
	mu      sync.Mutex
}

// NewManifest writes rows to path.
func NewManifest(path string, deps Deps) *Manifest {
	return &Manifest{
		path:    path,
		dryRun:  deps.DryRun,
		printer: &dryRunPrinter{out: deps.Out, label: "Manifest"},
	}
}

func (m *Manifest) Name() string { return "manifest" }

func (m *Manifest) Before(context.Context, string, string, string, media.Metadata) error {
	return nil
}

func (m *Manifest) After(_ context.Context, source, _ string, final string, md media.Metadata) error {
	if m.dryRun {
		m.printer.printf("append to manifest: %s", final)
		return nil
	}
	sum, err := fileutil.Checksum(final)
	if err != nil {
		return services.Wrap(services.ErrPluginSoft, "manifest", "checksum", final, err)
	}
	return m.append([]string{source, final, sum, naming.FormatDate("%Y-%m-%d %H:%M:%S", md)})
}

func (m *Manifest) Batch(context.Context) (bool, int, error) {
	return true, 0, nil
}

func (m *Manifest) append(row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	_, statErr := os.Stat(m.path)
	fresh := errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(manifestHeader); err != nil {
			return err
		}
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
