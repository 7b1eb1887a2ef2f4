package media

import (
	"context"

	"mediaorg/internal/logging"
	"mediaorg/internal/media/ffprobe"
)

// Video is a movie file read through ffprobe container tags.
type Video struct {
	*file
}

func readVideo(ctx context.Context, f *file, opts Options) *Video {
	v := &Video{file: f}
	if !f.valid {
		return v
	}
	result, err := ffprobe.Inspect(ctx, opts.FFprobeBinary, f.path)
	if err != nil {
		logging.WarnWithContext(opts.Logger, "ffprobe inspection failed", "ffprobe_failed",
			logging.String("path", f.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install ffprobe or set [ffprobe] binary"),
			logging.String(logging.FieldImpact, "video dated by file time"),
		)
	} else {
		if result.VideoStreamCount() == 0 {
			f.valid = false
			return v
		}
		applyProbeTags(f, result)
	}
	f.applyXMP(ctx, opts)
	f.geocode(ctx, opts)
	return v
}

// applyProbeTags copies the ffprobe container tags shared by video and m4a files.
func applyProbeTags(f *file, result ffprobe.Result) {
	if t, ok := result.CreationTime(); ok {
		f.setDateTaken(t)
	}
	if lat, lon, ok := result.Location(); ok {
		f.setCoordinates(lat, lon)
	}
	f.md.CameraMake = result.Tag("com.apple.quicktime.make", "make")
	f.md.CameraModel = result.Tag("com.apple.quicktime.model", "model")
	f.md.Title = result.Tag("com.apple.quicktime.title", "title")
	f.md.Album = result.Tag("com.apple.quicktime.album", "album")
}
