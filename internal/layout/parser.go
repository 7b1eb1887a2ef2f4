package layout

import (
	"regexp"
	"slices"
	"strings"
)

// Names resolvable without a macro. Date and location names also accept a
// macro body that overrides their default format or mask.
var (
	fieldNames    = []string{"album", "title", "original_name", "extension", "camera_make", "camera_model", "base_name"}
	locationNames = []string{"location", "city", "state", "country", "default"}
	dateFormats   = map[string]string{
		"date":  "%Y-%m-%d",
		"day":   "%d",
		"month": "%m",
		"year":  "%Y",
	}
)

// placeholderPattern matches multi-character lowercase %tokens. Single-letter
// tokens and uppercase letters are strftime directives.
var placeholderPattern = regexp.MustCompile(`%([a-z][a-z0-9_]*[a-z0-9])`)

// namePattern matches every %token in a file-name template.
var namePattern = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)`)

// IsLocationName reports whether name is a geocode key usable in masks.
func IsLocationName(name string) bool {
	return slices.Contains(locationNames, name)
}

// Parser turns folder templates into definitions, expanding the named macros
// of the [directory] configuration table.
type Parser struct {
	macros map[string]string
}

// NewParser returns a parser over the given macro table. The full_path entry,
// if present, is ignored as a macro.
func NewParser(macros map[string]string) *Parser {
	copied := make(map[string]string, len(macros))
	for name, body := range macros {
		if name == "full_path" {
			continue
		}
		copied[strings.TrimSpace(name)] = strings.TrimSpace(body)
	}
	return &Parser{macros: copied}
}

// Tokenize splits a folder template into segments on '/' and alternatives on
// '|'. A leading '%' is stripped from placeholder tokens; quoted literals are
// returned with their quotes. Empty segments are dropped.
func Tokenize(raw string) [][]string {
	var segments [][]string
	for _, part := range strings.Split(raw, "/") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		var alts []string
		for _, token := range strings.Split(part, "|") {
			token = strings.TrimSpace(token)
			token = strings.TrimPrefix(token, "%")
			if token == "" {
				continue
			}
			alts = append(alts, token)
		}
		if len(alts) > 0 {
			segments = append(segments, alts)
		}
	}
	return segments
}

// Parse tokenizes raw and resolves every token by name. An undefined macro
// yields a *DefinitionError; callers fall back to DefaultFolderDefinition.
func (p *Parser) Parse(raw string) (Definition, error) {
	tokens := Tokenize(raw)
	def := make(Definition, 0, len(tokens))
	for _, seg := range tokens {
		resolved := make(Segment, 0, len(seg))
		for _, token := range seg {
			alt, err := p.resolve(token, raw, nil)
			if err != nil {
				return nil, err
			}
			resolved = append(resolved, alt)
		}
		def = append(def, resolved)
	}
	return def, nil
}

func (p *Parser) resolve(token, template string, stack []string) (Alternative, error) {
	if text, ok := unquote(token); ok {
		return Alternative{Key: text, Kind: KindLiteral}, nil
	}
	if slices.Contains(stack, token) {
		return Alternative{}, &DefinitionError{Name: token, Template: template, Reason: "recursive macro"}
	}

	body, isMacro := p.macros[token]
	switch {
	case slices.Contains(fieldNames, token):
		return Alternative{Key: token, Kind: KindField}, nil
	case isMacro:
		return p.resolveMacro(token, body, template, append(stack, token))
	case IsLocationName(token):
		mask := "%" + token
		if token == "location" {
			mask = "%default"
		}
		return Alternative{Key: token, Format: mask, Kind: KindLocation}, nil
	}
	if format, ok := dateFormats[token]; ok {
		return Alternative{Key: token, Format: format, Kind: KindDate}, nil
	}
	return Alternative{}, &DefinitionError{Name: token, Template: template}
}

func (p *Parser) resolveMacro(name, body, template string, stack []string) (Alternative, error) {
	if text, ok := unquote(body); ok {
		return Alternative{Key: text, Kind: KindLiteral}, nil
	}
	words := placeholderWords(body)
	if len(words) == 0 {
		return Alternative{Key: name, Format: body, Kind: KindDate}, nil
	}
	allLocation := true
	for _, word := range words {
		if !IsLocationName(word) {
			allLocation = false
			break
		}
	}
	if allLocation {
		return Alternative{Key: name, Format: body, Kind: KindLocation}, nil
	}

	refs := make(map[string]Alternative, len(words))
	for _, word := range words {
		ref, err := p.resolve(word, template, stack)
		if err != nil {
			return Alternative{}, err
		}
		refs[word] = ref
	}
	return Alternative{Key: name, Format: body, Kind: KindComposite, Refs: refs}, nil
}

// ParseName parses a file-name template such as
// "%date-%original_name-%title.%extension". Every %token becomes a
// single-alternative segment and the text between tokens becomes literal
// separator segments. dateFormat overrides the %date format when non-empty.
func ParseName(raw, dateFormat string) (Definition, error) {
	if dateFormat == "" {
		dateFormat = DefaultNameDateFormat
	}
	var def Definition
	last := 0
	for _, loc := range namePattern.FindAllStringSubmatchIndex(raw, -1) {
		if loc[0] > last {
			def = append(def, Segment{{Key: raw[last:loc[0]], Kind: KindLiteral}})
		}
		name := raw[loc[2]:loc[3]]
		var alt Alternative
		switch {
		case name == "date":
			alt = Alternative{Key: name, Format: dateFormat, Kind: KindDate}
		case dateFormats[name] != "":
			alt = Alternative{Key: name, Format: dateFormats[name], Kind: KindDate}
		case slices.Contains(fieldNames, name):
			alt = Alternative{Key: name, Kind: KindField}
		case IsLocationName(name):
			mask := "%" + name
			if name == "location" {
				mask = "%default"
			}
			alt = Alternative{Key: name, Format: mask, Kind: KindLocation}
		default:
			return nil, &DefinitionError{Name: name, Template: raw, Reason: "unknown placeholder"}
		}
		def = append(def, Segment{alt})
		last = loc[1]
	}
	if last < len(raw) {
		def = append(def, Segment{{Key: raw[last:], Kind: KindLiteral}})
	}
	return def, nil
}

func placeholderWords(body string) []string {
	var words []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(body, -1) {
		if !slices.Contains(words, match[1]) {
			words = append(words, match[1])
		}
	}
	return words
}

func unquote(token string) (string, bool) {
	if len(token) < 2 {
		return "", false
	}
	first, last := token[0], token[len(token)-1]
	if (first == '"' || first == '\'') && first == last {
		return token[1 : len(token)-1], true
	}
	return "", false
}

// ExpandPlaceholders replaces every multi-character %token in format with the
// value returned by lookup. Tokens lookup does not know are left untouched.
func ExpandPlaceholders(format string, lookup func(name string) (string, bool)) string {
	return placeholderPattern.ReplaceAllStringFunc(format, func(match string) string {
		if value, ok := lookup(match[1:]); ok {
			return value
		}
		return match
	})
}
