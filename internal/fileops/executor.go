package fileops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"mediaorg/internal/fileutil"
	"mediaorg/internal/logging"
	"mediaorg/internal/services"
)

// Op is a filesystem mutation the executor can perform.
type Op string

const (
	OpMove   Op = "move"
	OpCopy   Op = "copy"
	OpRemove Op = "remove"
	OpTrash  Op = "trash"
	OpMkdir  Op = "mkdir"
)

// Options configures an Executor.
type Options struct {
	DryRun   bool
	Out      io.Writer
	TrashDir string
	Logger   *slog.Logger
}

// Executor performs file operations, or only reports them in dry-run mode.
type Executor struct {
	dryRun   bool
	out      io.Writer
	trashDir string
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewExecutor constructs an executor. Dry-run lines go to opts.Out, or
// os.Stdout when unset.
func NewExecutor(opts Options) *Executor {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Executor{
		dryRun:   opts.DryRun,
		out:      out,
		trashDir: opts.TrashDir,
		logger:   logging.NewComponentLogger(opts.Logger, "fileops"),
	}
}

// DryRun reports whether mutations are only printed.
func (e *Executor) DryRun() bool {
	return e.dryRun
}

// Execute runs op and reports success. Failures are logged, never returned.
func (e *Executor) Execute(ctx context.Context, op Op, src, dst string) bool {
	if err := e.Run(ctx, op, src, dst); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, e.logger), "file operation failed", "file_operation_failed",
			logging.String("op", string(op)),
			logging.String("source", src),
			logging.String("destination", dst),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions and free space on the destination"),
		)
		return false
	}
	return true
}

// Run performs op and returns the failure, if any. In dry-run mode it writes
// exactly one "[DRY-RUN] Would ..." line and succeeds.
func (e *Executor) Run(ctx context.Context, op Op, src, dst string) error {
	if e.dryRun {
		e.report(op, src, dst)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	switch op {
	case OpMove:
		return move(src, dst)
	case OpCopy:
		if err := fileutil.CopyFilePreserve(src, dst); err != nil {
			return services.Wrap(services.ErrTransient, "fileops", "copy", src, err)
		}
		return nil
	case OpRemove:
		if err := os.Remove(src); err != nil {
			return services.Wrap(services.ErrTransient, "fileops", "remove", src, err)
		}
		return nil
	case OpTrash:
		_, err := e.trash(src)
		return err
	case OpMkdir:
		if err := os.MkdirAll(src, 0o755); err != nil {
			return services.Wrap(services.ErrDirectoryCreate, "fileops", "mkdir", src, err)
		}
		return nil
	default:
		return services.Wrap(services.ErrValidation, "fileops", string(op), "unknown operation", nil)
	}
}

func (e *Executor) report(op Op, src, dst string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if dst == "" {
		fmt.Fprintf(e.out, "[DRY-RUN] Would %s: %s\n", op, src)
		return
	}
	fmt.Fprintf(e.out, "[DRY-RUN] Would %s: %s -> %s\n", op, src, dst)
}

// move renames src to dst, falling back to copy and remove across devices.
func move(src, dst string) error {
	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if err := fileutil.CopyFilePreserve(src, dst); err != nil {
			return services.Wrap(services.ErrTransient, "fileops", "move", "copy across devices", err)
		}
		if err := os.Remove(src); err != nil {
			return services.Wrap(services.ErrTransient, "fileops", "move", "remove source after copy", err)
		}
		return nil
	}
	return services.Wrap(services.ErrTransient, "fileops", "move", src, renameErr)
}

// trash moves src into the trash directory under a free name.
func (e *Executor) trash(src string) (string, error) {
	if strings.TrimSpace(e.trashDir) == "" {
		return "", services.Wrap(services.ErrConfiguration, "fileops", "trash", "no trash directory configured", nil)
	}
	if err := os.MkdirAll(e.trashDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrDirectoryCreate, "fileops", "trash", e.trashDir, err)
	}
	target, err := FreePath(filepath.Join(e.trashDir, filepath.Base(src)))
	if err != nil {
		return "", err
	}
	if err := move(src, target); err != nil {
		return "", err
	}
	return target, nil
}

// FreePath returns path when nothing exists there, otherwise the first free
// "name (n).ext" sibling.
func FreePath(path string) (string, error) {
	const maxAttempts = 10000
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	candidate := path
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return candidate, nil
			}
			return "", fmt.Errorf("stat candidate path: %w", err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("target %q already exists as directory", candidate)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, attempt, ext))
	}
	return "", fmt.Errorf("exhausted free names for %s", path)
}
