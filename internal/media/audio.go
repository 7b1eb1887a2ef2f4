package media

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bogem/id3v2"

	"mediaorg/internal/logging"
	"mediaorg/internal/media/ffprobe"
)

// Audio is a sound file read through ID3 (mp3) or container tags (m4a).
type Audio struct {
	*file
}

func readAudio(ctx context.Context, f *file, opts Options) *Audio {
	a := &Audio{file: f}
	if !f.valid {
		return a
	}
	if f.md.Extension == "mp3" {
		if err := a.readID3(); err != nil {
			opts.Logger.Debug("id3 read failed", logging.String("path", f.path), logging.Error(err))
			f.valid = false
			return a
		}
	} else {
		result, err := ffprobe.Inspect(ctx, opts.FFprobeBinary, f.path)
		if err != nil {
			logging.WarnWithContext(opts.Logger, "ffprobe inspection failed", "ffprobe_failed",
				logging.String("path", f.path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "install ffprobe or set [ffprobe] binary"),
				logging.String(logging.FieldImpact, "audio dated by file time"),
			)
		} else {
			if result.AudioStreamCount() == 0 {
				f.valid = false
				return a
			}
			applyProbeTags(f, result)
		}
	}
	f.applyXMP(ctx, opts)
	return a
}

func (a *Audio) readID3() error {
	tag, err := id3v2.Open(a.path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	a.md.Title = strings.TrimSpace(tag.Title())
	a.md.Album = strings.TrimSpace(tag.Album())
	recorded := tag.GetTextFrame("TDRC").Text
	if t, ok := ffprobe.ParseWallClock(recorded); ok {
		a.setDateTaken(t)
	} else if year, err := strconv.Atoi(strings.TrimSpace(tag.Year())); err == nil && year > 0 {
		a.setDateTaken(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC))
	}
	return nil
}
