package location

import (
	"regexp"
	"strings"
)

var maskToken = regexp.MustCompile(`%([a-z_]+)`)

// Unknown names the place of a file that has no usable location.
const Unknown = "Unknown Location"

// UnknownPlace is the geocode of a file without coordinates, or one the
// geocoder could not resolve.
func UnknownPlace() map[string]string {
	return map[string]string{"default": Unknown}
}

// ResolveMask composes a location mask such as "%city, %state" from a geocode
// result. When any token in the mask is missing from geocode, the whole mask
// resolves to geocode["default"]; a partially filled mask is never returned.
// A mask without tokens is returned as is.
func ResolveMask(mask string, geocode map[string]string) string {
	matches := maskToken.FindAllStringSubmatch(mask, -1)
	if len(matches) == 0 {
		return mask
	}
	for _, match := range matches {
		if value, ok := geocode[match[1]]; !ok || strings.TrimSpace(value) == "" {
			return strings.TrimSpace(geocode["default"])
		}
	}
	return maskToken.ReplaceAllStringFunc(mask, func(token string) string {
		return geocode[token[1:]]
	})
}
