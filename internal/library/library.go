package library

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"mediaorg/internal/fileutil"
	"mediaorg/internal/logging"
	"mediaorg/internal/media"
	"mediaorg/internal/services"
	"mediaorg/internal/store"
)

const defaultConcurrency = 4

// Status is the verification state of one hash entry.
type Status string

const (
	StatusOK       Status = "ok"
	StatusMissing  Status = "missing"
	StatusMismatch Status = "mismatch"
)

// Check is the verification result for one recorded file.
type Check struct {
	Path   string `json:"path"`
	Status Status `json:"status"`
}

// Report lists every verified entry in path order.
type Report struct {
	Checks []Check
}

// Failed counts entries that are missing or changed.
func (r Report) Failed() int {
	n := 0
	for _, c := range r.Checks {
		if c.Status != StatusOK {
			n++
		}
	}
	return n
}

// Maintainer rebuilds and verifies the hash database.
type Maintainer struct {
	store       *store.Store
	concurrency int
	logger      *slog.Logger
}

// NewMaintainer binds a maintainer to st. concurrency <= 0 uses a default.
func NewMaintainer(st *store.Store, concurrency int, logger *slog.Logger) *Maintainer {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Maintainer{store: st, concurrency: concurrency, logger: logging.NewComponentLogger(logger, "library")}
}

// Rebuild replaces the hash database with checksums of every supported media
// file under root. Hidden files and directories are skipped.
func (m *Maintainer) Rebuild(ctx context.Context, root string) (int, error) {
	if m.store == nil {
		return 0, services.Wrap(services.ErrConfiguration, "library", "rebuild", "hash database is not open", nil)
	}
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := path != root && strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !d.Type().IsRegular() {
			return nil
		}
		if _, ok := media.KindOf(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "library", "walk", root, err)
	}

	entries := make([]store.HashEntry, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for idx, path := range paths {
		idx, path := idx, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum, err := fileutil.Checksum(path)
			if err != nil {
				return fmt.Errorf("checksum %s: %w", path, err)
			}
			entries[idx] = store.HashEntry{Checksum: sum, Path: path}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, services.Wrap(services.ErrTransient, "library", "checksum", "", err)
	}

	if err := m.store.ReplaceHashes(ctx, entries); err != nil {
		return 0, err
	}
	m.logger.Info("hash database rebuilt",
		logging.String("root", root),
		logging.Int("files", len(entries)),
	)
	return len(entries), nil
}

// Verify recomputes the checksum of every recorded file.
func (m *Maintainer) Verify(ctx context.Context) (Report, error) {
	if m.store == nil {
		return Report{}, services.Wrap(services.ErrConfiguration, "library", "verify", "hash database is not open", nil)
	}
	entries, err := m.store.Hashes(ctx)
	if err != nil {
		return Report{}, err
	}

	var (
		mu     sync.Mutex
		checks = make([]Check, 0, len(entries))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			check := Check{Path: entry.Path, Status: StatusOK}
			sum, err := fileutil.Checksum(entry.Path)
			switch {
			case err != nil:
				check.Status = StatusMissing
			case sum != entry.Checksum:
				check.Status = StatusMismatch
			}
			if check.Status != StatusOK {
				logging.WarnWithContext(m.logger, "hash verification failed", "hash_verify_failed",
					logging.String("path", entry.Path),
					logging.String("status", string(check.Status)),
					logging.String(logging.FieldImpact, "library file changed or removed since import"),
				)
			}
			mu.Lock()
			checks = append(checks, check)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	sort.Slice(checks, func(a, b int) bool { return checks[a].Path < checks[b].Path })
	return Report{Checks: checks}, nil
}
