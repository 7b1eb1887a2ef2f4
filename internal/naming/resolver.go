package naming

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ncruces/go-strftime"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mediaorg/internal/layout"
	"mediaorg/internal/location"
	"mediaorg/internal/media"
	"mediaorg/internal/textutil"
)

// Capitalization modes for resolved file names. Any other value leaves the
// name as resolved.
const (
	CapitalizationLower = "lower"
	CapitalizationUpper = "upper"
)

// importedPrefix matches the date prefix the default name template adds, so
// re-importing a placed file does not stack prefixes.
var importedPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}-`)

var (
	lowerCaser = cases.Lower(language.Und)
	upperCaser = cases.Upper(language.Und)
)

// Destination is the resolved placement of one file under a library root.
type Destination struct {
	Folder string
	Name   string
}

// Path joins the destination under root.
func (d Destination) Path(root string) string {
	return filepath.Join(root, d.Folder, d.Name)
}

// SegmentOptions controls how a single segment is rendered.
type SegmentOptions struct {
	// FileName slugifies non-literal values instead of sanitizing them as folder names.
	FileName bool
}

// Resolver evaluates definitions against a metadata snapshot.
type Resolver struct {
	capitalization string
}

// NewResolver returns a resolver applying capitalization to file names.
func NewResolver(capitalization string) *Resolver {
	return &Resolver{capitalization: strings.ToLower(strings.TrimSpace(capitalization))}
}

// Resolve computes both the folder and file name for md.
func (r *Resolver) Resolve(folder, name layout.Definition, md media.Metadata) Destination {
	return Destination{
		Folder: filepath.Join(r.ResolvePath(folder, md)...),
		Name:   r.ResolveFileName(name, md),
	}
}

// ResolvePath renders each folder segment and drops the empty ones.
func (r *Resolver) ResolvePath(def layout.Definition, md media.Metadata) []string {
	parts := make([]string, 0, len(def))
	for _, seg := range def {
		if value := r.ResolveSegment(seg, md, SegmentOptions{}); value != "" {
			parts = append(parts, value)
		}
	}
	return parts
}

// ResolveSegment returns the first non-empty alternative of seg, or "".
func (r *Resolver) ResolveSegment(seg layout.Segment, md media.Metadata, opts SegmentOptions) string {
	for _, alt := range seg {
		value := r.alternative(alt, md)
		if alt.Kind != layout.KindLiteral {
			if opts.FileName {
				value = textutil.Slugify(value)
			} else {
				value = textutil.SanitizeFileName(value)
			}
		}
		if value != "" {
			return value
		}
	}
	return ""
}

type namePart struct {
	value   string
	literal bool
}

// ResolveFileName renders a file-name definition. An empty placeholder drops
// its preceding separator, or its following one when nothing precedes it.
func (r *Resolver) ResolveFileName(def layout.Definition, md media.Metadata) string {
	parts := make([]namePart, len(def))
	for i, seg := range def {
		parts[i] = namePart{
			value:   r.ResolveSegment(seg, md, SegmentOptions{FileName: true}),
			literal: isLiteral(seg),
		}
	}

	kept := make([]namePart, 0, len(parts))
	skipNext := false
	for i, p := range parts {
		if skipNext {
			skipNext = false
			continue
		}
		if p.literal || p.value != "" {
			kept = append(kept, p)
			continue
		}
		if n := len(kept); n > 0 && kept[n-1].literal {
			kept = kept[:n-1]
		} else if i+1 < len(parts) && parts[i+1].literal {
			skipNext = true
		}
	}

	var b strings.Builder
	for _, p := range kept {
		b.WriteString(p.value)
	}
	return r.capitalize(b.String())
}

func (r *Resolver) capitalize(name string) string {
	switch r.capitalization {
	case CapitalizationLower:
		return lowerCaser.String(name)
	case CapitalizationUpper:
		return upperCaser.String(name)
	default:
		return name
	}
}

func (r *Resolver) alternative(alt layout.Alternative, md media.Metadata) string {
	switch alt.Kind {
	case layout.KindLiteral:
		return alt.Key
	case layout.KindLocation:
		place := md.Place
		if place == nil {
			place = location.UnknownPlace()
		}
		return location.ResolveMask(alt.Format, place)
	case layout.KindDate:
		return FormatDate(alt.Format, md)
	case layout.KindComposite:
		return r.composite(alt, md)
	default:
		if alt.Key == "original_name" {
			return OriginalName(md)
		}
		return md.Field(alt.Key)
	}
}

// composite substitutes each reference in the macro body. It is empty when
// every reference resolved empty.
func (r *Resolver) composite(alt layout.Alternative, md media.Metadata) string {
	resolvedAny := false
	value := layout.ExpandPlaceholders(alt.Format, func(name string) (string, bool) {
		ref, ok := alt.Refs[name]
		if !ok {
			return "", false
		}
		v := r.alternative(ref, md)
		if v != "" {
			resolvedAny = true
		}
		return v, true
	})
	if !resolvedAny {
		return ""
	}
	return strings.TrimSpace(value)
}

// FormatDate formats the capture date of md with the strftime pattern format.
// DateTaken wins over FileTime; with neither the result is "".
func FormatDate(format string, md media.Metadata) string {
	if format == "" {
		format = layout.DefaultNameDateFormat
	}
	switch {
	case md.DateTaken != nil:
		return strftime.Format(format, *md.DateTaken)
	case !md.FileTime.IsZero():
		return strftime.Format(format, md.FileTime)
	default:
		return ""
	}
}

// OriginalName is the name a file had before its first import, without
// extension. Files imported without a recorded original name fall back to
// their base name with the import date prefix removed.
func OriginalName(md media.Metadata) string {
	if name := strings.TrimSpace(md.OriginalName); name != "" {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return importedPrefix.ReplaceAllString(md.BaseName, "")
}

func isLiteral(seg layout.Segment) bool {
	return len(seg) == 1 && seg[0].Kind == layout.KindLiteral
}
