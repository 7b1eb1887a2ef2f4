package media

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mediaorg/internal/location"
	"mediaorg/internal/logging"
	"mediaorg/internal/media/exiftool"
)

// ErrUnsupported is returned by Open for extensions no media type handles.
var ErrUnsupported = errors.New("unsupported media type")

// Media is a file the importer can place into the library.
type Media interface {
	IsValid() bool
	Metadata() Metadata
	FilePath() string
	SetAlbum(string)
	SetTitle(string)
}

// Kind names the family a media file belongs to.
type Kind string

const (
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

var extensionKinds = map[string]Kind{
	"arw": KindPhoto, "cr2": KindPhoto, "dng": KindPhoto, "gif": KindPhoto,
	"heic": KindPhoto, "jpeg": KindPhoto, "jpg": KindPhoto, "nef": KindPhoto,
	"png": KindPhoto, "rw2": KindPhoto, "tif": KindPhoto, "tiff": KindPhoto, "webp": KindPhoto,
	"avi": KindVideo, "m4v": KindVideo, "mov": KindVideo, "mp4": KindVideo,
	"mpg": KindVideo, "mpeg": KindVideo, "3gp": KindVideo, "mts": KindVideo,
	"m4a": KindAudio, "mp3": KindAudio,
}

// KindOf returns the media kind for path based on its extension.
func KindOf(path string) (Kind, bool) {
	kind, ok := extensionKinds[extensionOf(path)]
	return kind, ok
}

// Metadata is an immutable snapshot of what was read from a file.
type Metadata struct {
	DateTaken    *time.Time
	FileTime     time.Time
	OriginalName string
	Title        string
	Album        string
	Extension    string
	BaseName     string
	Latitude     *float64
	Longitude    *float64
	CameraMake   string
	CameraModel  string
	Place        map[string]string
	MimeType     string
	Kind         Kind
}

// Field returns the named metadata value as text. Unknown keys yield "".
func (m Metadata) Field(key string) string {
	switch key {
	case "album":
		return m.Album
	case "title":
		return m.Title
	case "original_name":
		return m.OriginalName
	case "extension":
		return m.Extension
	case "base_name":
		return m.BaseName
	case "camera_make":
		return m.CameraMake
	case "camera_model":
		return m.CameraModel
	case "mime_type":
		return m.MimeType
	default:
		return ""
	}
}

// HasCoordinates reports whether both latitude and longitude are known.
func (m Metadata) HasCoordinates() bool {
	return m.Latitude != nil && m.Longitude != nil
}

// Options carries the collaborators used while reading metadata.
type Options struct {
	Geocoder      location.Geocoder
	FFprobeBinary string
	ExifTool      *exiftool.Tool
	Logger        *slog.Logger
}

// Open inspects path and returns the matching media type. Metadata is read
// once here; later Metadata calls return the cached snapshot.
func Open(ctx context.Context, path string, opts Options) (Media, error) {
	kind, ok := KindOf(path)
	if !ok {
		return nil, ErrUnsupported
	}
	opts.Logger = logging.NewComponentLogger(opts.Logger, "media")
	f := newFile(path, kind)
	switch kind {
	case KindPhoto:
		return readPhoto(ctx, f, opts), nil
	case KindVideo:
		return readVideo(ctx, f, opts), nil
	default:
		return readAudio(ctx, f, opts), nil
	}
}

// file holds the state shared by every media type.
type file struct {
	path  string
	valid bool
	md    Metadata
	album *string
	title *string
}

func newFile(path string, kind Kind) *file {
	name := filepath.Base(path)
	ext := extensionOf(path)
	f := &file{
		path: path,
		md: Metadata{
			Extension: ext,
			BaseName:  strings.TrimSuffix(name, filepath.Ext(name)),
			MimeType:  mime.TypeByExtension("." + ext),
			Kind:      kind,
			Place:     location.UnknownPlace(),
		},
	}
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		f.valid = true
		f.md.FileTime = fileTime(path, info)
	}
	return f
}

func (f *file) IsValid() bool    { return f.valid }
func (f *file) FilePath() string { return f.path }

func (f *file) SetAlbum(album string) { f.album = &album }
func (f *file) SetTitle(title string) { f.title = &title }

func (f *file) Metadata() Metadata {
	md := f.md
	if f.album != nil {
		md.Album = *f.album
	}
	if f.title != nil {
		md.Title = *f.title
	}
	if md.Place != nil {
		place := make(map[string]string, len(md.Place))
		for k, v := range md.Place {
			place[k] = v
		}
		md.Place = place
	}
	return md
}

func (f *file) setCoordinates(lat, lon float64) {
	f.md.Latitude = &lat
	f.md.Longitude = &lon
}

// setDateTaken stores t as a wall-clock time with no zone conversion.
func (f *file) setDateTaken(t time.Time) {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	f.md.DateTaken = &wall
}

// applyXMP overlays values written by a previous import.
func (f *file) applyXMP(ctx context.Context, opts Options) {
	if opts.ExifTool == nil || !f.valid {
		return
	}
	tags, err := opts.ExifTool.Read(ctx, f.path)
	if err != nil {
		opts.Logger.Debug("exiftool read skipped", logging.String("path", f.path), logging.Error(err))
		return
	}
	if tags.OriginalFileName != "" {
		f.md.OriginalName = tags.OriginalFileName
	}
	if tags.Title != "" {
		f.md.Title = tags.Title
	}
	if tags.Album != "" {
		f.md.Album = tags.Album
	}
}

func (f *file) geocode(ctx context.Context, opts Options) {
	if opts.Geocoder == nil || !f.md.HasCoordinates() {
		return
	}
	place, err := opts.Geocoder.Reverse(ctx, *f.md.Latitude, *f.md.Longitude)
	if err != nil {
		logging.WarnWithContext(opts.Logger, "reverse geocode failed", "geocode_failed",
			logging.String("path", f.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check [geolocation] settings and network access"),
			logging.String(logging.FieldImpact, "location segments resolve to Unknown Location"),
		)
		return
	}
	f.md.Place = place
}

func extensionOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
