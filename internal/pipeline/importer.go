package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"

	"mediaorg/internal/logging"
	"mediaorg/internal/media"
	"mediaorg/internal/plugins"
	"mediaorg/internal/services"
)

// Opener inspects one path. It returns media.ErrUnsupported for files the
// library does not handle.
type Opener func(ctx context.Context, path string) (media.Media, error)

// MediaOpener adapts media.Open to an Opener.
func MediaOpener(opts media.Options) Opener {
	return func(ctx context.Context, path string) (media.Media, error) {
		return media.Open(ctx, path, opts)
	}
}

// ImportOptions controls an import run.
type ImportOptions struct {
	Options
	Album string
	Title string
}

// Summary aggregates the results of an import run.
type Summary struct {
	Results []Result
	Counts  map[Outcome]int
	Elapsed time.Duration
}

// HasFailures reports whether any file failed a hard step.
func (s Summary) HasFailures() bool {
	return s.Counts[OutcomeFailed] > 0
}

func (s *Summary) add(r Result) {
	if s.Counts == nil {
		s.Counts = make(map[Outcome]int)
	}
	s.Results = append(s.Results, r)
	s.Counts[r.Outcome]++
}

// Importer walks source paths and feeds every supported file through a Pipeline.
type Importer struct {
	pipeline *Pipeline
	open     Opener
	exclude  []*regexp.Regexp
	logger   *slog.Logger
}

// NewImporter compiles the exclusion patterns and binds the pipeline.
func NewImporter(p *Pipeline, open Opener, exclude []string, logger *slog.Logger) (*Importer, error) {
	if p == nil || open == nil {
		return nil, services.Wrap(services.ErrValidation, "import", "construct", "pipeline and opener are required", nil)
	}
	patterns := make([]*regexp.Regexp, 0, len(exclude))
	for _, raw := range exclude {
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "import", "compile exclude", raw, err)
		}
		patterns = append(patterns, re)
	}
	return &Importer{
		pipeline: p,
		open:     open,
		exclude:  patterns,
		logger:   logging.NewComponentLogger(logger, "import"),
	}, nil
}

// Run imports every file under sources into destRoot. Per-file and per-source
// failures are recorded in the summary; only cancellation aborts the run.
func (i *Importer) Run(ctx context.Context, sources []string, destRoot string, opts ImportOptions) (Summary, error) {
	started := time.Now()
	summary := Summary{Counts: make(map[Outcome]int)}
	logger := logging.WithContext(ctx, i.logger)

	fail := func(path string, err error) {
		logging.WarnWithContext(logger, "source unreadable", "source_unreadable",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "files below this path were not imported"),
		)
		summary.add(Result{Source: path, Outcome: OutcomeFailed, Err: err})
	}
	for _, source := range sources {
		err := i.walk(source, fail, func(path string) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if i.excluded(path) {
				summary.add(Result{Source: path, Outcome: OutcomeExcluded})
				return nil
			}
			if r, ok := i.importFile(ctx, path, destRoot, opts); ok {
				summary.add(r)
			}
			return nil
		})
		if err != nil {
			summary.Elapsed = time.Since(started)
			return summary, err
		}
	}

	summary.Elapsed = time.Since(started)
	logger.Info("import finished",
		logging.Int("imported", summary.Counts[OutcomeImported]),
		logging.Int("failed", summary.Counts[OutcomeFailed]),
		logging.Int("duplicate", summary.Counts[OutcomeDuplicate]),
		logging.String("elapsed", summary.Elapsed.Round(time.Millisecond).String()),
	)
	i.pipeline.plugins.RunFinish(ctx, plugins.RunStats{
		Imported: summary.Counts[OutcomeImported],
		Failed:   summary.Counts[OutcomeFailed] + summary.Counts[OutcomeRejected],
		Skipped:  len(summary.Results) - summary.Counts[OutcomeImported] - summary.Counts[OutcomeFailed] - summary.Counts[OutcomeRejected],
		Elapsed:  summary.Elapsed.Round(time.Second).String(),
	})
	return summary, nil
}

func (i *Importer) importFile(ctx context.Context, path, destRoot string, opts ImportOptions) (Result, bool) {
	ctx = services.WithRequestID(services.WithSource(ctx, path), uuid.NewString())
	logger := logging.WithContext(ctx, i.logger)

	m, err := i.open(ctx, path)
	if errors.Is(err, media.ErrUnsupported) {
		logger.Debug("skipping unsupported file")
		return Result{}, false
	}
	if err != nil {
		return Result{Source: path, Outcome: OutcomeFailed, Err: err}, true
	}
	if opts.Album != "" {
		m.SetAlbum(opts.Album)
	}
	if opts.Title != "" {
		m.SetTitle(opts.Title)
	}

	result := i.pipeline.Process(ctx, path, destRoot, m, opts.Options)
	switch result.Outcome {
	case OutcomeImported, OutcomeUnchanged:
	case OutcomeFailed:
		logging.ErrorWithContext(logger, "import failed", "import_failed",
			logging.String("planned", result.Planned),
			logging.Error(result.Err),
			logging.String(logging.FieldErrorHint, "check permissions on the destination"),
		)
	default:
		logger.Info("file skipped",
			logging.String("outcome", string(result.Outcome)),
			logging.Error(result.Err),
		)
	}
	return result, true
}

func (i *Importer) excluded(path string) bool {
	for _, re := range i.exclude {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// walk visits source itself when it is a file, or every regular file below
// it in lexical order. Unreadable paths go to fail and the walk continues;
// only errors returned by visit stop it.
func (i *Importer) walk(source string, fail func(path string, err error), visit func(path string) error) error {
	info, err := os.Stat(source)
	if err != nil {
		fail(source, services.Wrap(services.ErrInvalidSource, "import", "stat source", source, err))
		return nil
	}
	if !info.IsDir() {
		return visit(source)
	}
	return filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			fail(path, services.Wrap(services.ErrInvalidSource, "import", "walk source", path, err))
			if d != nil && d.IsDir() && path != source {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		return visit(path)
	})
}
