package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSource   = errors.New("invalid source")
	ErrDefinition      = errors.New("definition error")
	ErrDuplicateTarget = errors.New("duplicate target")
	ErrDirectoryCreate = errors.New("directory create failure")
	ErrPluginHard      = errors.New("plugin hard failure")
	ErrPluginSoft      = errors.New("plugin soft failure")
	ErrExternalTool    = errors.New("external tool error")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrNotFound        = errors.New("not found")
	ErrTransient       = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsHardFailure reports whether err should abort processing of the current file.
// Soft plugin failures and nil errors are not hard.
func IsHardFailure(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrPluginSoft)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

// OutcomeFor maps a per-file processing error onto the outcome name reported
// to users. A nil error means the file was imported.
func OutcomeFor(err error) string {
	switch {
	case err == nil:
		return "imported"
	case errors.Is(err, ErrInvalidSource):
		return "invalid"
	case errors.Is(err, ErrDuplicateTarget):
		return "duplicate"
	case errors.Is(err, ErrPluginHard):
		return "rejected"
	default:
		return "failed"
	}
}
