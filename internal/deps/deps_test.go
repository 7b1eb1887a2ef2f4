package deps

import (
	"os"
	"path/filepath"
	"testing"

	"mediaorg/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary with detail, got %#v", results[1])
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}

	missing := Missing(results)
	if len(missing) != 1 || missing[0].Name != "Missing" {
		t.Fatalf("expected only the required missing binary, got %#v", missing)
	}
}

func TestRequirementsFollowConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	reqs := Requirements(cfg)
	if len(reqs) != 1 || reqs[0].Name != "ffprobe" || !reqs[0].Optional {
		t.Fatalf("expected optional ffprobe only, got %#v", reqs)
	}

	cfg.ExifTool.Enabled = true
	statuses := CheckBinaries(Requirements(cfg))
	if len(statuses) != 2 {
		t.Fatalf("expected exiftool requirement, got %#v", statuses)
	}
	for _, s := range statuses {
		if !s.Available {
			t.Fatalf("stubbed %s should be available: %s", s.Name, s.Detail)
		}
	}
}
