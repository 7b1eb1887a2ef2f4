package logging

import (
	"strings"
)

type infoField struct {
	label string
	value string
}

const infoAttrLimit = 8

// Keys shown first, in this order, when present on an info-level record.
var infoHighlightKeys = []string{
	FieldAlert,
	FieldEventType,
	"outcome",
	"destination",
	"operation",
	"plugin",
	"error",
	FieldErrorHint,
	FieldImpact,
	"imported",
	"skipped",
	"failed",
	"processed",
}

// selectInfoFields returns formatted info-level fields and a count of hidden entries.
// Highlighted keys come first; the remainder fills up to limit.
func selectInfoFields(attrs []kv, limit int) ([]infoField, int) {
	if len(attrs) == 0 {
		return nil, 0
	}
	used := make([]bool, len(attrs))
	result := make([]infoField, 0, limit)
	hidden := 0

	add := func(idx int) {
		used[idx] = true
		if limit > 0 && len(result) >= limit {
			hidden++
			return
		}
		result = append(result, infoField{label: displayLabel(attrs[idx].key), value: attrString(attrs[idx].value)})
	}

	for _, key := range infoHighlightKeys {
		for idx, attr := range attrs {
			if !used[idx] && attr.key == key {
				add(idx)
			}
		}
	}
	for idx, attr := range attrs {
		if used[idx] {
			continue
		}
		if isDebugOnlyKey(attr.key) {
			used[idx] = true
			continue
		}
		add(idx)
	}
	return result, hidden
}

func isDebugOnlyKey(key string) bool {
	switch key {
	case "", FieldRunID, FieldCorrelationID, FieldSource:
		return true
	}
	return strings.HasSuffix(key, "_id")
}

func displayLabel(key string) string {
	switch key {
	case FieldAlert:
		return "Alert"
	case FieldEventType:
		return "Event"
	case FieldErrorHint:
		return "Hint"
	default:
		return titleizeKey(key)
	}
}

func titleizeKey(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, part := range parts {
		parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
	}
	return strings.Join(parts, " ")
}
