// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream, Format: per-stream and container properties including tags
//
// Inspect runs the binary; Parse decodes an existing payload. Helper methods
// on Result read capture time, ISO 6709 coordinates, and arbitrary tags.
package ffprobe
