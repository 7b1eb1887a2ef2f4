package media

import (
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"mediaorg/internal/logging"
)

// Photo is a still image read through EXIF.
type Photo struct {
	*file
}

// Formats the registered image decoders cannot parse. They are accepted on
// extension alone.
var undecodablePhotos = map[string]bool{"heic": true, "rw2": true}

// Raw formats that are TIFF containers; EXIF alone proves them readable.
var rawPhotos = map[string]bool{"arw": true, "cr2": true, "dng": true, "nef": true}

func readPhoto(ctx context.Context, f *file, opts Options) *Photo {
	p := &Photo{file: f}
	if !f.valid {
		return p
	}
	fh, err := os.Open(f.path)
	if err != nil {
		f.valid = false
		return p
	}
	defer fh.Close()

	ext := f.md.Extension
	decoded := undecodablePhotos[ext]
	if !decoded {
		_, _, err := image.DecodeConfig(fh)
		decoded = err == nil
	}

	exifOK := false
	if _, err := fh.Seek(0, io.SeekStart); err == nil {
		if x, err := exif.Decode(fh); err == nil {
			exifOK = true
			p.readEXIF(x)
		} else {
			opts.Logger.Debug("no exif data", logging.String("path", f.path), logging.Error(err))
		}
	}

	f.valid = decoded || (rawPhotos[ext] && exifOK)
	if !f.valid {
		return p
	}
	f.applyXMP(ctx, opts)
	f.geocode(ctx, opts)
	return p
}

func (p *Photo) readEXIF(x *exif.Exif) {
	if t, err := x.DateTime(); err == nil && t.Year() > 1 {
		p.setDateTaken(t)
	}
	p.md.CameraMake = exifString(x, exif.Make)
	p.md.CameraModel = exifString(x, exif.Model)
	p.md.Title = exifString(x, exif.ImageDescription)
	if lat, lon, err := x.LatLong(); err == nil {
		p.setCoordinates(lat, lon)
	}
}

func exifString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	value, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(value, "\x00"))
}
