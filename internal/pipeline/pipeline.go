package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mediaorg/internal/config"
	"mediaorg/internal/fileops"
	"mediaorg/internal/fileutil"
	"mediaorg/internal/layout"
	"mediaorg/internal/logging"
	"mediaorg/internal/media"
	"mediaorg/internal/media/exiftool"
	"mediaorg/internal/naming"
	"mediaorg/internal/plugins"
	"mediaorg/internal/services"
	"mediaorg/internal/store"
)

// Outcome classifies what happened to one source file.
type Outcome string

const (
	OutcomeImported  Outcome = "imported"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
	OutcomeExcluded  Outcome = "excluded"
)

// Options controls how a file is placed.
type Options struct {
	Move           bool
	AllowDuplicate bool
	// Trash moves the source to the trash directory after a successful copy.
	Trash bool
}

// Result reports one processed file. Destination is empty unless the file
// was imported; Planned always carries the resolved path when one was computed.
type Result struct {
	Source      string  `json:"source"`
	Destination string  `json:"destination,omitempty"`
	Planned     string  `json:"planned,omitempty"`
	Outcome     Outcome `json:"outcome"`
	Err         error   `json:"-"`
}

// MetadataWriter stamps XMP tags onto a placed file.
type MetadataWriter interface {
	Write(ctx context.Context, path string, tags exiftool.Tags) error
}

// Deps are the collaborators a Pipeline drives.
type Deps struct {
	Cache    *layout.Cache
	Executor *fileops.Executor
	Plugins  *plugins.Set
	Store    *store.Store
	Writer   MetadataWriter
	Logger   *slog.Logger
}

// Pipeline places a single media file into the library.
type Pipeline struct {
	cfg      *config.Config
	cache    *layout.Cache
	resolver *naming.Resolver
	exec     *fileops.Executor
	plugins  *plugins.Set
	store    *store.Store
	writer   MetadataWriter
	logger   *slog.Logger
}

// New constructs a pipeline. A nil cache or executor gets a default bound to cfg.
func New(cfg *config.Config, deps Deps) *Pipeline {
	logger := logging.NewComponentLogger(deps.Logger, "pipeline")
	cache := deps.Cache
	if cache == nil {
		cache = layout.NewCache(cfg, deps.Logger)
	}
	exec := deps.Executor
	if exec == nil {
		exec = fileops.NewExecutor(fileops.Options{TrashDir: cfg.Paths.TrashDir, Logger: deps.Logger})
	}
	return &Pipeline{
		cfg:      cfg,
		cache:    cache,
		resolver: naming.NewResolver(cfg.File.Capitalization),
		exec:     exec,
		plugins:  deps.Plugins,
		store:    deps.Store,
		writer:   deps.Writer,
		logger:   logger,
	}
}

// Plan resolves where m would be placed under destRoot.
func (p *Pipeline) Plan(destRoot string, m media.Media) string {
	folder := p.cache.FolderDefinition()
	_, name := p.cache.NameDefinition()
	return p.resolver.Resolve(folder, name, m.Metadata()).Path(destRoot)
}

// Process runs one file through validation, path resolution, duplicate
// checks, plugin hooks, placement, and time normalization.
func (p *Pipeline) Process(ctx context.Context, source, destRoot string, m media.Media, opts Options) Result {
	logger := logging.WithContext(ctx, p.logger)
	result := Result{Source: source}
	fail := func(outcome Outcome, err error) Result {
		result.Outcome = outcome
		result.Err = err
		return result
	}

	if !m.IsValid() {
		return fail(OutcomeInvalid, services.Wrap(services.ErrInvalidSource, "pipeline", "validate", "not a readable media file", nil))
	}
	md := m.Metadata()

	dst := p.Plan(destRoot, m)
	result.Planned = dst

	if same, err := sameFile(source, dst); err != nil {
		return fail(OutcomeFailed, services.Wrap(services.ErrTransient, "pipeline", "compare", "", err))
	} else if same {
		logger.Debug("file already in place", logging.String("destination", dst))
		return fail(OutcomeUnchanged, nil)
	}

	checksum, err := fileutil.Checksum(source)
	if err != nil {
		return fail(OutcomeFailed, services.Wrap(services.ErrInvalidSource, "pipeline", "checksum", "", err))
	}

	dst, err = p.deduplicate(ctx, checksum, dst, opts)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateTarget) {
			return fail(OutcomeDuplicate, err)
		}
		return fail(OutcomeFailed, err)
	}
	result.Planned = dst

	if err := p.plugins.RunBefore(ctx, source, destRoot, dst, md); err != nil {
		logger.Info("file rejected by plugin", logging.String("destination", dst), logging.Error(err))
		return fail(OutcomeRejected, err)
	}

	dir := filepath.Dir(dst)
	if err := p.exec.Run(ctx, fileops.OpMkdir, dir, ""); err != nil {
		return fail(OutcomeFailed, err)
	}

	if err := p.place(ctx, source, dst, md, opts); err != nil {
		return fail(OutcomeFailed, err)
	}

	p.plugins.RunAfter(ctx, source, destRoot, dst, md)

	if !p.exec.DryRun() {
		if md.DateTaken != nil {
			p.normalizeTime(logger, dst, *md.DateTaken)
		}
		if p.store != nil {
			if err := p.store.AddHash(ctx, checksum, dst); err != nil {
				logging.WarnWithContext(logger, "hash record failed", "hash_record_failed",
					logging.String("destination", dst),
					logging.Error(err),
					logging.String(logging.FieldImpact, "duplicate detection will miss this file"),
				)
			}
		}
	}

	logger.Info("file imported",
		logging.String("destination", dst),
		logging.Bool("move", opts.Move),
		logging.Bool("dry_run", p.exec.DryRun()),
	)
	result.Outcome = OutcomeImported
	result.Destination = dst
	return result
}

// deduplicate applies the hash database and destination collision rules and
// returns the final destination.
func (p *Pipeline) deduplicate(ctx context.Context, checksum, dst string, opts Options) (string, error) {
	if !opts.AllowDuplicate && p.store != nil {
		existing, ok, err := p.store.CheckHash(ctx, checksum)
		if err != nil {
			return "", services.Wrap(services.ErrTransient, "pipeline", "check hash", "", err)
		}
		if ok && existing != dst && fileExists(existing) {
			return "", services.Wrap(services.ErrDuplicateTarget, "pipeline", "dedupe", "already imported as "+existing, nil)
		}
	}

	if !fileExists(dst) {
		return dst, nil
	}
	if !opts.AllowDuplicate {
		return "", services.Wrap(services.ErrDuplicateTarget, "pipeline", "dedupe", "destination exists: "+dst, nil)
	}
	if p.cfg.Library.CollisionPolicy == config.CollisionOverwrite {
		return dst, nil
	}
	free, err := fileops.FreePath(dst)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "pipeline", "allocate name", dst, err)
	}
	return free, nil
}

// place moves or copies source to dst. Copies go through a side file so the
// metadata writer never touches the source and dst only appears complete.
func (p *Pipeline) place(ctx context.Context, source, dst string, md media.Metadata, opts Options) error {
	if opts.Move {
		if err := p.exec.Run(ctx, fileops.OpMove, source, dst); err != nil {
			return err
		}
		p.writeTags(ctx, dst, md)
		return nil
	}

	if p.exec.DryRun() {
		if err := p.exec.Run(ctx, fileops.OpCopy, source, dst); err != nil {
			return err
		}
	} else {
		side := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".partial")
		if err := p.exec.Run(ctx, fileops.OpCopy, source, side); err != nil {
			return err
		}
		p.writeTags(ctx, side, md)
		if err := p.exec.Run(ctx, fileops.OpMove, side, dst); err != nil {
			_ = os.Remove(side)
			return err
		}
	}
	if opts.Trash {
		if err := p.exec.Run(ctx, fileops.OpTrash, source, ""); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, p.logger), "trash source failed", "trash_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "source file left in place"),
			)
		}
	}
	return nil
}

func (p *Pipeline) writeTags(ctx context.Context, path string, md media.Metadata) {
	if p.writer == nil || p.exec.DryRun() {
		return
	}
	original := naming.OriginalName(md)
	if md.Extension != "" {
		original += "." + md.Extension
	}
	tags := exiftool.Tags{OriginalFileName: original, Title: md.Title, Album: md.Album}
	if err := p.writer.Write(ctx, path, tags); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "metadata write failed", "metadata_write_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check [exiftool] binary"),
			logging.String(logging.FieldImpact, "original name not recorded in file"),
		)
	}
}

// normalizeTime sets the file's modification time to the capture wall clock
// in the local zone. Content is never touched.
func (p *Pipeline) normalizeTime(logger *slog.Logger, dst string, taken time.Time) {
	local := time.Date(taken.Year(), taken.Month(), taken.Day(), taken.Hour(), taken.Minute(), taken.Second(), 0, time.Local)
	if err := os.Chtimes(dst, time.Now(), local); err != nil {
		logging.WarnWithContext(logger, "set file time failed", "chtimes_failed",
			logging.String("destination", dst),
			logging.Error(err),
		)
	}
}

func sameFile(a, b string) (bool, error) {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true, nil
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bi, err := os.Stat(b)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if !os.SameFile(ai, bi) {
		return false, nil
	}
	return fileutil.SameContent(a, b)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
