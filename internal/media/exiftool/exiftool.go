package exiftool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"mediaorg/internal/services"
)

// Tags are the XMP values the importer reads back and writes on import.
type Tags struct {
	OriginalFileName string `json:"OriginalFileName"`
	Title            string `json:"Title"`
	Album            string `json:"Album"`
}

// IsEmpty reports whether no tag carries a value.
func (t Tags) IsEmpty() bool {
	return t.OriginalFileName == "" && t.Title == "" && t.Album == ""
}

// Tool runs the exiftool binary one invocation per call.
type Tool struct {
	binary string
}

// New returns a Tool for binary, defaulting to "exiftool".
func New(binary string) *Tool {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "exiftool"
	}
	return &Tool{binary: binary}
}

// Binary returns the executable name used for invocations.
func (t *Tool) Binary() string {
	return t.binary
}

// Read returns the XMP tags stored in path.
func (t *Tool) Read(ctx context.Context, path string) (Tags, error) {
	if strings.TrimSpace(path) == "" {
		return Tags{}, errors.New("exiftool read: empty path")
	}
	cmd := exec.CommandContext(ctx, t.binary, "-j", "-XMP:OriginalFileName", "-XMP:Title", "-XMP:Album", "--", path)
	output, err := cmd.Output()
	if err != nil {
		return Tags{}, services.Wrap(services.ErrExternalTool, "exiftool", "read", path, err)
	}
	return Parse(output)
}

// Parse decodes the JSON array printed by "exiftool -j".
func Parse(data []byte) (Tags, error) {
	var records []Tags
	if err := json.Unmarshal(data, &records); err != nil {
		return Tags{}, fmt.Errorf("exiftool parse: %w", err)
	}
	if len(records) == 0 {
		return Tags{}, nil
	}
	return records[0], nil
}

// Write stores the non-empty tags into path in place.
func (t *Tool) Write(ctx context.Context, path string, tags Tags) error {
	if tags.IsEmpty() {
		return nil
	}
	args := []string{"-overwrite_original", "-q"}
	if tags.OriginalFileName != "" {
		args = append(args, "-XMP:OriginalFileName="+tags.OriginalFileName)
	}
	if tags.Title != "" {
		args = append(args, "-XMP:Title="+tags.Title)
	}
	if tags.Album != "" {
		args = append(args, "-XMP:Album="+tags.Album)
	}
	args = append(args, "--", path)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.binary, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return services.Wrap(services.ErrExternalTool, "exiftool", "write", strings.TrimSpace(stderr.String()), err)
	}
	return nil
}
