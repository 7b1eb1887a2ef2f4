package plugins_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"mediaorg/internal/config"
	"mediaorg/internal/logging"
	"mediaorg/internal/media"
	"mediaorg/internal/notifications"
	"mediaorg/internal/plugins"
	"mediaorg/internal/services"
	"mediaorg/internal/testsupport"
)

type recordingPlugin struct {
	name      string
	beforeErr error
	afterErr  error
	calls     *[]string
}

func (p recordingPlugin) Name() string { return p.name }

func (p recordingPlugin) Before(context.Context, string, string, string, media.Metadata) error {
	*p.calls = append(*p.calls, p.name+".before")
	return p.beforeErr
}

func (p recordingPlugin) After(context.Context, string, string, string, media.Metadata) error {
	*p.calls = append(*p.calls, p.name+".after")
	return p.afterErr
}

func (p recordingPlugin) Batch(context.Context) (bool, int, error) {
	*p.calls = append(*p.calls, p.name+".batch")
	return true, 1, nil
}

func photoMetadata() media.Metadata {
	taken := time.Date(2015, 12, 5, 0, 59, 26, 0, time.UTC)
	return media.Metadata{DateTaken: &taken, Extension: "jpg", BaseName: "plain", Kind: media.KindPhoto}
}

func TestSetRunsInOrderAndStopsOnHardFailure(t *testing.T) {
	var calls []string
	set := plugins.NewSet(logging.NewNop(),
		recordingPlugin{name: "soft", beforeErr: errors.New("meh"), calls: &calls},
		recordingPlugin{name: "hard", beforeErr: plugins.HardFailure("hard", "no"), calls: &calls},
		recordingPlugin{name: "never", calls: &calls},
	)

	err := set.RunBefore(context.Background(), "src", "root", "planned", photoMetadata())
	if !errors.Is(err, services.ErrPluginHard) {
		t.Fatalf("expected hard failure, got %v", err)
	}
	if strings.Join(calls, ",") != "soft.before,hard.before" {
		t.Fatalf("unexpected call order %v", calls)
	}
}

func TestSetAfterAndBatchCollect(t *testing.T) {
	var calls []string
	set := plugins.NewSet(nil,
		recordingPlugin{name: "a", afterErr: errors.New("ignored"), calls: &calls},
		recordingPlugin{name: "b", calls: &calls},
	)
	set.RunAfter(context.Background(), "src", "root", "final", photoMetadata())
	results := set.RunBatch(context.Background())
	if len(results) != 2 || !results[0].OK || results[1].Count != 1 {
		t.Fatalf("unexpected batch results %#v", results)
	}
	if strings.Join(calls, ",") != "a.after,b.after,a.batch,b.batch" {
		t.Fatalf("unexpected call order %v", calls)
	}
	if got := strings.Join(set.Names(), ","); got != "a,b" {
		t.Fatalf("unexpected names %q", got)
	}
}

func TestErrorPlugins(t *testing.T) {
	ctx := context.Background()
	if err := (plugins.ThrowError{}).Before(ctx, "", "", "", media.Metadata{}); !services.IsHardFailure(err) || !errors.Is(err, services.ErrPluginHard) {
		t.Fatalf("expected hard failure, got %v", err)
	}
	if err := (plugins.RuntimeError{}).Before(ctx, "", "", "", media.Metadata{}); err == nil || errors.Is(err, services.ErrPluginHard) {
		t.Fatalf("expected soft failure, got %v", err)
	}
	if err := (plugins.RuntimeError{}).After(ctx, "", "", "", media.Metadata{}); err == nil {
		t.Fatal("expected after error")
	}
}

func TestBuildRejectsUnknownPlugin(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPlugins("bogus"))
	if _, err := plugins.Build(cfg, plugins.Deps{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestBuildKeepsConfiguredOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPlugins("runtimeerror, Manifest,throwerror"))
	cfg.Manifest.Path = filepath.Join(t.TempDir(), "manifest.csv")
	set, err := plugins.Build(cfg, plugins.Deps{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := strings.Join(set.Names(), ","); got != "runtimeerror,manifest,throwerror" {
		t.Fatalf("unexpected order %q", got)
	}
}

func newGooglePhotos(t *testing.T, cfg *config.Config, dryRun bool, out io.Writer, doer plugins.HTTPDoer) *plugins.GooglePhotos {
	t.Helper()
	st := testsupport.MustOpenStore(t, cfg)
	return plugins.NewGooglePhotos(cfg, plugins.Deps{Store: st, DryRun: dryRun, Out: out, Doer: doer, Logger: logging.NewNop()})
}

func TestGooglePhotosQueuesAndUploads(t *testing.T) {
	var (
		mu       sync.Mutex
		received []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		mu.Lock()
		received = append(received, r.Header.Get("X-Goog-Upload-File-Name"))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.GooglePhotos.UploadURL = server.URL
	cfg.GooglePhotos.Token = "tok"
	gp := newGooglePhotos(t, cfg, false, io.Discard, server.Client())
	ctx := context.Background()

	final := filepath.Join(t.TempDir(), "2015-12-05_00-59-26-plain.jpg")
	testsupport.WriteJPEG(t, final, testsupport.EXIF{})
	if err := gp.After(ctx, "/in/plain.jpg", "/lib", final, photoMetadata()); err != nil {
		t.Fatalf("After: %v", err)
	}
	audio := photoMetadata()
	audio.Kind = media.KindAudio
	if err := gp.After(ctx, "/in/song.mp3", "/lib", "/lib/song.mp3", audio); err != nil {
		t.Fatalf("After audio: %v", err)
	}

	ok, count, err := gp.Batch(ctx)
	if err != nil || !ok || count != 1 {
		t.Fatalf("Batch = %v %d %v", ok, count, err)
	}
	if len(received) != 1 || received[0] != "plain.jpg" {
		t.Fatalf("unexpected uploads %v", received)
	}

	ok, count, err = gp.Batch(ctx)
	if err != nil || !ok || count != 0 {
		t.Fatalf("expected drained queue, got %v %d %v", ok, count, err)
	}
}

func TestGooglePhotosCorruptEntryUploadsUnderFileName(t *testing.T) {
	var (
		mu       sync.Mutex
		received []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		received = append(received, r.Header.Get("X-Goog-Upload-File-Name"))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.GooglePhotos.UploadURL = server.URL
	cfg.GooglePhotos.Token = "tok"
	st := testsupport.MustOpenStore(t, cfg)
	var logs bytes.Buffer
	gp := plugins.NewGooglePhotos(cfg, plugins.Deps{
		Store:  st,
		Out:    io.Discard,
		Doer:   server.Client(),
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})
	ctx := context.Background()

	final := filepath.Join(t.TempDir(), "2015-12-05_00-59-26-plain.jpg")
	testsupport.WriteJPEG(t, final, testsupport.EXIF{})
	if err := st.PutPluginEntry(ctx, "googlephotos", final, "{not json"); err != nil {
		t.Fatalf("PutPluginEntry: %v", err)
	}

	ok, count, err := gp.Batch(ctx)
	if err != nil || !ok || count != 1 {
		t.Fatalf("Batch = %v %d %v", ok, count, err)
	}
	if len(received) != 1 || received[0] != filepath.Base(final) {
		t.Fatalf("unexpected uploads %v", received)
	}
	if !strings.Contains(logs.String(), "queue entry unreadable") {
		t.Fatalf("expected warning for corrupt entry, got %q", logs.String())
	}
}

func TestGooglePhotosRequeuesFailedUploads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.GooglePhotos.UploadURL = server.URL
	cfg.GooglePhotos.Token = "tok"
	gp := newGooglePhotos(t, cfg, false, io.Discard, server.Client())
	ctx := context.Background()

	final := filepath.Join(t.TempDir(), "a.jpg")
	testsupport.WriteJPEG(t, final, testsupport.EXIF{})
	if err := gp.After(ctx, "/in/a.jpg", "/lib", final, photoMetadata()); err != nil {
		t.Fatalf("After: %v", err)
	}
	ok, count, err := gp.Batch(ctx)
	if err != nil || ok || count != 0 {
		t.Fatalf("Batch = %v %d %v", ok, count, err)
	}
	ok, _, _ = gp.Batch(ctx)
	if ok {
		t.Fatal("expected requeued entry to be retried and fail again")
	}
}

func TestGooglePhotosDryRunLeavesQueue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.GooglePhotos.UploadURL = "http://127.0.0.1:0"
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	if err := st.PutPluginEntry(ctx, "googlephotos", "/lib/a.jpg", `{"original_name":"a.jpg"}`); err != nil {
		t.Fatalf("PutPluginEntry: %v", err)
	}

	var out bytes.Buffer
	gp := plugins.NewGooglePhotos(cfg, plugins.Deps{Store: st, DryRun: true, Out: &out})
	ok, count, err := gp.Batch(ctx)
	if err != nil || !ok || count != 1 {
		t.Fatalf("Batch = %v %d %v", ok, count, err)
	}
	want := "[DRY-RUN][GooglePhotos] Would upload photo: /lib/a.jpg\n" +
		"[DRY-RUN][GooglePhotos] Would delete from plugin database: /lib/a.jpg\n"
	if out.String() != want {
		t.Fatalf("unexpected dry-run output:\n%s", out.String())
	}
	entries, err := st.PluginEntries(ctx, "googlephotos")
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected queue intact, got %d entries (%v)", len(entries), err)
	}
}

func TestGooglePhotosUploadValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.GooglePhotos.UploadURL = "http://127.0.0.1:0"
	ctx := context.Background()

	noToken := newGooglePhotos(t, cfg, false, io.Discard, nil)
	if err := noToken.Upload(ctx, "/nope.jpg", ""); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	cfg.GooglePhotos.Token = "tok"
	gp := newGooglePhotos(t, cfg, false, io.Discard, nil)
	if err := gp.Upload(ctx, filepath.Join(t.TempDir(), "missing.jpg"), ""); !errors.Is(err, services.ErrInvalidSource) {
		t.Fatalf("expected invalid source for missing file, got %v", err)
	}
	broken := filepath.Join(t.TempDir(), "broken.jpg")
	testsupport.WriteText(t, broken, "nope")
	if err := gp.Upload(ctx, broken, ""); !errors.Is(err, services.ErrInvalidSource) {
		t.Fatalf("expected invalid source for broken file, got %v", err)
	}
}

func TestManifestAppendsRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "manifest.csv")
	m := plugins.NewManifest(path, plugins.Deps{})
	ctx := context.Background()

	for _, name := range []string{"a.jpg", "b.jpg"} {
		final := filepath.Join(dir, name)
		testsupport.WriteText(t, final, "same")
		if err := m.After(ctx, "/in/"+name, dir, final, photoMetadata()); err != nil {
			t.Fatalf("After: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus two rows, got %d", len(rows))
	}
	if rows[0][0] != "source" || rows[1][0] != "/in/a.jpg" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if rows[1][2] != "0967115f2813a3541eaef77de9d9d5773f1c0c04314b0bbfe4ff3b3b1c55b5d5" {
		t.Fatalf("unexpected checksum %q", rows[1][2])
	}
	if rows[2][3] != "2015-12-05 00:59:26" {
		t.Fatalf("unexpected date %q", rows[2][3])
	}
}

type fakeNotifier struct {
	events []notifications.Event
}

func (f *fakeNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	f.events = append(f.events, event)
	return nil
}

func TestNotifyPublishesPerFileAndSummary(t *testing.T) {
	fake := &fakeNotifier{}
	n := plugins.NewNotify(fake, plugins.Deps{})
	ctx := context.Background()
	if err := n.After(ctx, "a", "root", "b", photoMetadata()); err != nil {
		t.Fatalf("After: %v", err)
	}
	ok, count, err := n.Batch(ctx)
	if err != nil || !ok || count != 0 {
		t.Fatalf("Batch = %v %d %v", ok, count, err)
	}
	if err := n.Finish(ctx, plugins.RunStats{Imported: 1}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	want := []notifications.Event{notifications.EventFileImported, notifications.EventImportCompleted}
	if len(fake.events) != len(want) {
		t.Fatalf("unexpected events %v", fake.events)
	}
	for i := range want {
		if fake.events[i] != want[i] {
			t.Fatalf("unexpected events %v", fake.events)
		}
	}
}
