package plugins

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"mediaorg/internal/config"
	"mediaorg/internal/logging"
	"mediaorg/internal/media"
	"mediaorg/internal/naming"
	"mediaorg/internal/services"
	"mediaorg/internal/store"
)

const googlePhotosName = "googlephotos"

// HTTPDoer describes the HTTP client used by upload plugins.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type uploadEntry struct {
	OriginalName string `json:"original_name"`
	Album        string `json:"album,omitempty"`
}

// GooglePhotos queues imported photos and videos and uploads them in batch.
type GooglePhotos struct {
	store       *store.Store
	uploadURL   string
	token       string
	concurrency int
	ffprobe     string
	client      HTTPDoer
	dryRun      bool
	printer     *dryRunPrinter
	logger      *slog.Logger
}

// NewGooglePhotos builds the upload plugin from cfg.
func NewGooglePhotos(cfg *config.Config, deps Deps) *GooglePhotos {
	client := deps.Doer
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.GooglePhotos.Timeout) * time.Second}
	}
	concurrency := cfg.GooglePhotos.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &GooglePhotos{
		store:       deps.Store,
		uploadURL:   strings.TrimSpace(cfg.GooglePhotos.UploadURL),
		token:       strings.TrimSpace(cfg.GooglePhotos.Token),
		concurrency: concurrency,
		ffprobe:     cfg.FFprobe.Binary,
		client:      client,
		dryRun:      deps.DryRun,
		printer:     &dryRunPrinter{out: deps.Out, label: "GooglePhotos"},
		logger:      logging.NewComponentLogger(deps.Logger, googlePhotosName),
	}
}

func (g *GooglePhotos) Name() string { return googlePhotosName }

func (g *GooglePhotos) Before(context.Context, string, string, string, media.Metadata) error {
	return nil
}

// After queues photo and video files for the next batch upload.
func (g *GooglePhotos) After(ctx context.Context, source, destRoot, final string, md media.Metadata) error {
	if md.Kind != media.KindPhoto && md.Kind != media.KindVideo {
		return nil
	}
	if g.dryRun {
		g.printer.printf("queue for upload: %s", final)
		return nil
	}
	entry := uploadEntry{OriginalName: naming.OriginalName(md), Album: md.Album}
	if md.Extension != "" {
		entry.OriginalName += "." + md.Extension
	}
	value, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return g.store.PutPluginEntry(ctx, googlePhotosName, final, string(value))
}

// Batch uploads every queued file. Each entry is claimed atomically before
// upload and requeued if the upload fails.
func (g *GooglePhotos) Batch(ctx context.Context) (bool, int, error) {
	entries, err := g.store.PluginEntries(ctx, googlePhotosName)
	if err != nil {
		return false, 0, err
	}

	if g.dryRun {
		for _, entry := range entries {
			g.printer.printf("upload photo: %s", entry.Key)
			g.printer.printf("delete from plugin database: %s", entry.Key)
		}
		return true, len(entries), nil
	}

	var (
		uploaded atomic.Int64
		failed   atomic.Int64
	)
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(g.concurrency)
	for _, entry := range entries {
		entry := entry
		group.Go(func() error {
			claimed, ok, err := g.store.TakePluginEntry(gctx, googlePhotosName, entry.Key)
			if err != nil {
				failed.Add(1)
				return nil
			}
			if !ok {
				return nil
			}
			var meta uploadEntry
			if err := json.Unmarshal([]byte(claimed.Value), &meta); err != nil {
				logging.WarnWithContext(g.logger, "queue entry unreadable", "queue_entry_corrupt",
					logging.String("path", claimed.Key),
					logging.Error(err),
					logging.String(logging.FieldImpact, "uploaded under its library file name"),
				)
			}
			if err := g.Upload(gctx, claimed.Key, meta.OriginalName); err != nil {
				failed.Add(1)
				logging.WarnWithContext(g.logger, "upload failed", "upload_failed",
					logging.String("path", claimed.Key),
					logging.Error(err),
					logging.String(logging.FieldImpact, "file stays queued for the next batch"),
				)
				if putErr := g.store.PutPluginEntry(ctx, googlePhotosName, claimed.Key, claimed.Value); putErr != nil {
					g.logger.Error("requeue failed", logging.String("path", claimed.Key), logging.Error(putErr))
				}
				return nil
			}
			uploaded.Add(1)
			return nil
		})
	}
	_ = group.Wait()

	g.logger.Info("upload batch complete",
		logging.Int64("uploaded", uploaded.Load()),
		logging.Int64("failed", failed.Load()),
	)
	return failed.Load() == 0, int(uploaded.Load()), nil
}

// Upload sends path to the configured endpoint. Missing or invalid files and
// a missing token are errors.
func (g *GooglePhotos) Upload(ctx context.Context, path, originalName string) error {
	if g.token == "" {
		return services.Wrap(services.ErrConfiguration, googlePhotosName, "upload", "no token configured", nil)
	}
	m, err := media.Open(ctx, path, media.Options{FFprobeBinary: g.ffprobe})
	if err != nil {
		return services.Wrap(services.ErrInvalidSource, googlePhotosName, "upload", path, err)
	}
	if !m.IsValid() {
		return services.Wrap(services.ErrInvalidSource, googlePhotosName, "upload", "not a valid media file: "+path, nil)
	}
	if g.dryRun {
		g.printer.printf("upload photo: %s", path)
		return nil
	}

	fh, err := os.Open(path)
	if err != nil {
		return services.Wrap(services.ErrInvalidSource, googlePhotosName, "upload", path, err)
	}
	defer fh.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.uploadURL, fh)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	if originalName == "" {
		originalName = filepath.Base(path)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Goog-Upload-Protocol", "raw")
	req.Header.Set("X-Goog-Upload-File-Name", originalName)
	if mt := m.Metadata().MimeType; mt != "" {
		req.Header.Set("X-Goog-Upload-Content-Type", mt)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, googlePhotosName, "upload", "request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrExternalTool, googlePhotosName, "upload",
			fmt.Sprintf("upload returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
