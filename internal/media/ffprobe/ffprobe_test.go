package ffprobe

import (
	"testing"
	"time"
)

const sampleJSON = `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "h264", "tags": {"creation_time": "2015-01-19T20:45:11.000000Z"}},
    {"index": 1, "codec_type": "audio", "codec_name": "aac"}
  ],
  "format": {
    "filename": "clip.mov",
    "nb_streams": 2,
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "tags": {
      "com.apple.quicktime.creationdate": "2015-01-19T12:45:11-0800",
      "com.apple.quicktime.location.ISO6709": "+37.3688-122.0363+010.000/",
      "com.apple.quicktime.make": "Apple",
      "title": "Beach"
    }
  }
}`

func TestParseAndHelpers(t *testing.T) {
	result, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
	if got := result.Tag("TITLE"); got != "Beach" {
		t.Fatalf("expected case-insensitive tag lookup, got %q", got)
	}
	if got := result.Tag("missing", "com.apple.quicktime.make"); got != "Apple" {
		t.Fatalf("expected fallback key, got %q", got)
	}

	created, ok := result.CreationTime()
	if !ok {
		t.Fatal("expected creation time")
	}
	want := time.Date(2015, 1, 19, 12, 45, 11, 0, time.UTC)
	if !created.Equal(want) {
		t.Fatalf("expected wall-clock %v, got %v", want, created)
	}

	lat, lon, ok := result.Location()
	if !ok || lat != 37.3688 || lon != -122.0363 {
		t.Fatalf("unexpected location %v %v %v", lat, lon, ok)
	}
}

func TestCreationTimeFallsBackToStreamTag(t *testing.T) {
	result := Result{Streams: []Stream{{Tags: map[string]string{"creation_time": "2015-01-19T20:45:11.000000Z"}}}}
	created, ok := result.CreationTime()
	if !ok {
		t.Fatal("expected creation time")
	}
	if created.Hour() != 20 {
		t.Fatalf("expected UTC hour 20, got %v", created)
	}
}

func TestParseWallClock(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"2015:01:19 12:45:11-08:00", true, time.Date(2015, 1, 19, 12, 45, 11, 0, time.UTC)},
		{"2015-12-05 00:59:26", true, time.Date(2015, 12, 5, 0, 59, 26, 0, time.UTC)},
		{"0000:00:00 00:00:00", false, time.Time{}},
		{"garbage", false, time.Time{}},
	}
	for _, tc := range tests {
		got, ok := ParseWallClock(tc.in)
		if ok != tc.ok || !got.Equal(tc.want) {
			t.Fatalf("ParseWallClock(%q) = %v %v, want %v %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte("{")); err == nil {
		t.Fatal("expected parse error")
	}
}
