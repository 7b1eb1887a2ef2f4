package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"mediaorg/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckEndpoint(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ok.Close()
	if result := CheckEndpoint(context.Background(), "geo", ok.URL); !result.Passed {
		t.Fatalf("4xx should count as reachable, got: %s", result.Detail)
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()
	if result := CheckEndpoint(context.Background(), "geo", broken.URL); result.Passed {
		t.Fatal("expected 5xx to fail")
	}

	if result := CheckEndpoint(context.Background(), "geo", ""); result.Passed || result.Detail != "missing url" {
		t.Fatalf("unexpected result for empty url: %#v", result)
	}
}

func TestRunAllFlagsMissingRequirements(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPlugins("googlephotos"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	cfg.ExifTool.Enabled = true
	cfg.ExifTool.Binary = "clearly-not-present-exiftool"
	cfg.FFprobe.Binary = "clearly-not-present-ffprobe"

	results := RunAll(context.Background(), cfg)
	failed := Failed(results)

	names := map[string]bool{}
	for _, r := range failed {
		names[r.Name] = true
	}
	if !names["exiftool"] || !names["Google Photos token"] {
		t.Fatalf("expected exiftool and token failures, got %#v", failed)
	}
	if names["ffprobe"] {
		t.Fatal("ffprobe is optional and must not fail the run")
	}
	for _, dir := range []string{"Database directory", "Log directory", "Trash directory"} {
		if names[dir] {
			t.Fatalf("%s should pass after EnsureDirectories", dir)
		}
	}
}
