package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int               `json:"index"`
	CodecName string            `json:"codec_name"`
	CodecType string            `json:"codec_type"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Tags      map[string]string `json:"tags"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string            `json:"filename"`
	NBStreams  int               `json:"nb_streams"`
	FormatName string            `json:"format_name"`
	Tags       map[string]string `json:"tags"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}
	return Parse(output)
}

// Parse decodes an ffprobe JSON payload.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	return r.countStreams("video")
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	return r.countStreams("audio")
}

func (r Result) countStreams(kind string) int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, kind) {
			count++
		}
	}
	return count
}

// Tag returns the first non-empty value for any of keys, looking at the
// container tags before stream tags. Keys match case-insensitively.
func (r Result) Tag(keys ...string) string {
	sources := make([]map[string]string, 0, len(r.Streams)+1)
	sources = append(sources, r.Format.Tags)
	for _, s := range r.Streams {
		sources = append(sources, s.Tags)
	}
	for _, key := range keys {
		for _, tags := range sources {
			for k, v := range tags {
				if strings.EqualFold(k, key) && strings.TrimSpace(v) != "" {
					return strings.TrimSpace(v)
				}
			}
		}
	}
	return ""
}

var wallClockPattern = regexp.MustCompile(`^(\d{4})[:-](\d{2})[:-](\d{2})[T ](\d{2}):(\d{2}):(\d{2})`)

// CreationTime returns the capture time. The QuickTime creation date carries
// the local wall clock and its offset is dropped; the generic creation_time
// tag is UTC and kept as such.
func (r Result) CreationTime() (time.Time, bool) {
	if t, ok := ParseWallClock(r.Tag("com.apple.quicktime.creationdate")); ok {
		return t, true
	}
	return ParseWallClock(r.Tag("creation_time", "date"))
}

// ParseWallClock reads the leading "YYYY:MM:DD HH:MM:SS" (or ISO) portion of
// value and ignores any fraction or zone suffix. A zero year is treated as unset.
func ParseWallClock(value string) (time.Time, bool) {
	m := wallClockPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return time.Time{}, false
	}
	parts := make([]int, 6)
	for i := range parts {
		parts[i], _ = strconv.Atoi(m[i+1])
	}
	if parts[0] == 0 {
		return time.Time{}, false
	}
	return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, time.UTC), true
}

var iso6709Pattern = regexp.MustCompile(`^([+-]\d+(?:\.\d+)?)([+-]\d+(?:\.\d+)?)`)

// Location returns coordinates from an ISO 6709 location tag such as
// "+37.3688-122.0363/".
func (r Result) Location() (float64, float64, bool) {
	value := r.Tag("com.apple.quicktime.location.ISO6709", "location")
	m := iso6709Pattern.FindStringSubmatch(value)
	if m == nil {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(m[1], 64)
	lon, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
