package layout

import (
	"fmt"
	"strings"

	"mediaorg/internal/services"
)

// Kind identifies how an Alternative is resolved against metadata.
type Kind int

const (
	// KindField reads a metadata field verbatim.
	KindField Kind = iota
	// KindDate formats the capture date with Format (strftime).
	KindDate
	// KindLocation composes Format as a location mask over the geocode map.
	KindLocation
	// KindLiteral yields Key as constant text.
	KindLiteral
	// KindComposite substitutes each %token of Format with the value of Refs[token].
	KindComposite
)

func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindDate:
		return "date"
	case KindLocation:
		return "location"
	case KindLiteral:
		return "literal"
	case KindComposite:
		return "composite"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Alternative is one fallback candidate within a segment.
type Alternative struct {
	Key    string
	Format string
	Kind   Kind
	Refs   map[string]Alternative
}

// Segment is one folder level or file-name component. Alternatives are tried
// left to right; the first non-empty value wins.
type Segment []Alternative

// Definition is an ordered sequence of segments.
type Definition []Segment

// String renders a compact, human-readable form of the definition.
func (d Definition) String() string {
	parts := make([]string, 0, len(d))
	for _, seg := range d {
		alts := make([]string, 0, len(seg))
		for _, alt := range seg {
			switch alt.Kind {
			case KindLiteral:
				alts = append(alts, `"`+alt.Key+`"`)
			case KindField:
				alts = append(alts, "%"+alt.Key)
			default:
				alts = append(alts, fmt.Sprintf("%%%s=%s", alt.Key, alt.Format))
			}
		}
		parts = append(parts, strings.Join(alts, "|"))
	}
	return strings.Join(parts, "/")
}

// DefinitionError reports a template reference that cannot be resolved.
type DefinitionError struct {
	Name     string
	Template string
	Reason   string
}

func (e *DefinitionError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "undefined macro"
	}
	return fmt.Sprintf("%s %q in template %q", reason, e.Name, e.Template)
}

// Is lets callers match with errors.Is(err, services.ErrDefinition).
func (e *DefinitionError) Is(target error) bool {
	return target == services.ErrDefinition
}

const (
	// DefaultNameTemplate is used when [file] name is not configured.
	DefaultNameTemplate = "%date-%original_name-%title.%extension"
	// DefaultNameDateFormat is used for %date in file names when [file] date is not configured.
	DefaultNameDateFormat = "%Y-%m-%d_%H-%M-%S"
	// DefaultFolderDateFormat is the %date format of the built-in folder definition.
	DefaultFolderDateFormat = "%Y-%m-%b"
	// UnknownLocation is the final fallback of the built-in folder definition.
	UnknownLocation = "Unknown Location"
)

// DefaultFolderDefinition returns the built-in folder layout:
// %date(%Y-%m-%b) / %album | %location(%city) | "Unknown Location".
func DefaultFolderDefinition() Definition {
	return Definition{
		{{Key: "date", Format: DefaultFolderDateFormat, Kind: KindDate}},
		{
			{Key: "album", Kind: KindField},
			{Key: "location", Format: "%city", Kind: KindLocation},
			{Key: UnknownLocation, Kind: KindLiteral},
		},
	}
}

// DefaultNameDefinition returns the parsed built-in file-name template.
func DefaultNameDefinition() Definition {
	def, err := ParseName(DefaultNameTemplate, DefaultNameDateFormat)
	if err != nil {
		panic(fmt.Sprintf("layout: default name template: %v", err))
	}
	return def
}
