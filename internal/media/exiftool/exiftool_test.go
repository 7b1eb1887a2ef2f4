package exiftool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediaorg/internal/services"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exiftool")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestParse(t *testing.T) {
	tags, err := Parse([]byte(`[{"SourceFile":"a.jpg","OriginalFileName":"IMG_0001.JPG","Title":"Beach"}]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tags.OriginalFileName != "IMG_0001.JPG" || tags.Title != "Beach" || tags.Album != "" {
		t.Fatalf("unexpected tags %#v", tags)
	}
	if tags, err := Parse([]byte(`[]`)); err != nil || !tags.IsEmpty() {
		t.Fatalf("expected empty tags, got %#v %v", tags, err)
	}
}

func TestReadRunsBinary(t *testing.T) {
	script := writeScript(t, `echo '[{"OriginalFileName":"plain.jpg","Album":"Trip"}]'`+"\n")
	tags, err := New(script).Read(context.Background(), "/tmp/x.jpg")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tags.OriginalFileName != "plain.jpg" || tags.Album != "Trip" {
		t.Fatalf("unexpected tags %#v", tags)
	}
}

func TestWritePassesOnlySetTags(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	script := writeScript(t, `printf '%s\n' "$@" > `+argsFile+"\n")
	err := New(script).Write(context.Background(), "/tmp/x.jpg", Tags{OriginalFileName: "plain.jpg", Album: "Trip"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	args := string(data)
	for _, want := range []string{"-XMP:OriginalFileName=plain.jpg", "-XMP:Album=Trip", "/tmp/x.jpg"} {
		if !strings.Contains(args, want) {
			t.Fatalf("expected %q in args %q", want, args)
		}
	}
	if strings.Contains(args, "XMP:Title") {
		t.Fatalf("did not expect title in args %q", args)
	}
}

func TestWriteSkipsEmptyTags(t *testing.T) {
	if err := New("/nonexistent/exiftool").Write(context.Background(), "/tmp/x.jpg", Tags{}); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestWriteReportsFailure(t *testing.T) {
	script := writeScript(t, "echo bad >&2\nexit 1\n")
	err := New(script).Write(context.Background(), "/tmp/x.jpg", Tags{Title: "x"})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
