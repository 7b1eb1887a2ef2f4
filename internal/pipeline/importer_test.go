package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mediaorg/internal/logging"
	"mediaorg/internal/media"
	"mediaorg/internal/pipeline"
	"mediaorg/internal/plugins"
	"mediaorg/internal/testsupport"
)

type finishRecorder struct {
	stats *plugins.RunStats
}

func (finishRecorder) Name() string { return "recorder" }
func (finishRecorder) Before(context.Context, string, string, string, media.Metadata) error {
	return nil
}
func (finishRecorder) After(context.Context, string, string, string, media.Metadata) error {
	return nil
}
func (finishRecorder) Batch(context.Context) (bool, int, error) { return true, 0, nil }
func (r finishRecorder) Finish(_ context.Context, stats plugins.RunStats) error {
	*r.stats = stats
	return nil
}

func TestImporterRunAggregatesOutcomes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var stats plugins.RunStats
	set := plugins.NewSet(logging.NewNop(), finishRecorder{stats: &stats})
	h := newHarness(t, cfg, harnessOptions{plugins: set})

	src := t.TempDir()
	writePhoto(t, src, "Canon")
	testsupport.WriteText(t, filepath.Join(src, "broken.jpg"), "not an image")
	testsupport.WriteText(t, filepath.Join(src, "notes.txt"), "ignored")
	writePhoto(t, filepath.Join(src, "skip"), "Nikon")

	imp, err := pipeline.NewImporter(h.pipeline, pipeline.MediaOpener(media.Options{Logger: logging.NewNop()}), []string{`/skip/`}, logging.NewNop())
	if err != nil {
		t.Fatalf("NewImporter: %v", err)
	}
	summary, err := imp.Run(context.Background(), []string{src}, h.dest, pipeline.ImportOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(summary.Results) != 3 {
		t.Fatalf("expected 3 results, got %+v", summary.Results)
	}
	for outcome, want := range map[pipeline.Outcome]int{
		pipeline.OutcomeImported: 1,
		pipeline.OutcomeInvalid:  1,
		pipeline.OutcomeExcluded: 1,
	} {
		if got := summary.Counts[outcome]; got != want {
			t.Fatalf("%s: expected %d, got %d", outcome, want, got)
		}
	}
	if summary.HasFailures() {
		t.Fatal("invalid and excluded files are not failures")
	}
	if stats.Imported != 1 || stats.Skipped != 2 {
		t.Fatalf("unexpected finish stats %+v", stats)
	}
}

func TestImporterAppliesOverridesAndTrash(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	h := newHarness(t, cfg, harnessOptions{})
	src := writePhoto(t, t.TempDir(), "Canon")

	imp, err := pipeline.NewImporter(h.pipeline, pipeline.MediaOpener(media.Options{}), nil, nil)
	if err != nil {
		t.Fatalf("NewImporter: %v", err)
	}
	summary, err := imp.Run(context.Background(), []string{src}, h.dest, pipeline.ImportOptions{
		Options: pipeline.Options{Trash: true},
		Album:   "Holiday",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Results) != 1 {
		t.Fatalf("expected one result, got %+v", summary.Results)
	}
	want := filepath.Join(h.dest, "2015-12-Dec", "Holiday", "2015-12-05_00-59-26-plain.jpg")
	if got := summary.Results[0].Destination; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if _, err := os.Stat(src); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("source should be trashed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.TrashDir, "plain.jpg")); err != nil {
		t.Fatalf("expected source in trash: %v", err)
	}
}

func TestNewImporterRejectsBadPattern(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	h := newHarness(t, cfg, harnessOptions{noStore: true})
	if _, err := pipeline.NewImporter(h.pipeline, pipeline.MediaOpener(media.Options{}), []string{"("}, nil); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestImporterContinuesPastMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	h := newHarness(t, cfg, harnessOptions{})

	first := t.TempDir()
	second := t.TempDir()
	writePhoto(t, first, "Canon")
	writePhoto(t, second, "Nikon")
	missing := filepath.Join(first, "gone")

	imp, err := pipeline.NewImporter(h.pipeline, pipeline.MediaOpener(media.Options{Logger: logging.NewNop()}), nil, logging.NewNop())
	if err != nil {
		t.Fatalf("NewImporter: %v", err)
	}
	summary, err := imp.Run(context.Background(), []string{first, missing, second}, h.dest, pipeline.ImportOptions{
		Options: pipeline.Options{AllowDuplicate: true},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := summary.Counts[pipeline.OutcomeImported]; got != 2 {
		t.Fatalf("expected both sources imported, got %d (%+v)", got, summary.Results)
	}
	if got := summary.Counts[pipeline.OutcomeFailed]; got != 1 {
		t.Fatalf("expected one failed source, got %d", got)
	}
	var failed pipeline.Result
	for _, r := range summary.Results {
		if r.Outcome == pipeline.OutcomeFailed {
			failed = r
		}
	}
	if failed.Source != missing || failed.Err == nil {
		t.Fatalf("expected failure recorded for %s, got %+v", missing, failed)
	}
	if !summary.HasFailures() {
		t.Fatal("a missing source should count as a failure")
	}
}

func TestImporterStopsOnCancellation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	h := newHarness(t, cfg, harnessOptions{})
	src := t.TempDir()
	writePhoto(t, src, "Canon")

	imp, err := pipeline.NewImporter(h.pipeline, pipeline.MediaOpener(media.Options{}), nil, nil)
	if err != nil {
		t.Fatalf("NewImporter: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := imp.Run(ctx, []string{src}, h.dest, pipeline.ImportOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
