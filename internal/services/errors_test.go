package services_test

import (
	"errors"
	"strings"
	"testing"

	"mediaorg/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrDirectoryCreate, "pipeline", "mkdir", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrDirectoryCreate) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"pipeline", "mkdir", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err)
	}
}

func TestIsHardFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "soft", err: services.Wrap(services.ErrPluginSoft, "plugin", "before", "oops", nil), want: false},
		{name: "hard", err: services.Wrap(services.ErrPluginHard, "plugin", "before", "veto", nil), want: true},
		{name: "plain", err: errors.New("unclassified"), want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.IsHardFailure(tc.err); got != tc.want {
				t.Fatalf("IsHardFailure(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestOutcomeFor(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "imported"},
		{services.Wrap(services.ErrInvalidSource, "pipeline", "validate", "", nil), "invalid"},
		{services.Wrap(services.ErrDuplicateTarget, "pipeline", "dedupe", "", nil), "duplicate"},
		{services.Wrap(services.ErrPluginHard, "plugin", "before", "", nil), "rejected"},
		{services.Wrap(services.ErrDirectoryCreate, "pipeline", "mkdir", "", nil), "failed"},
		{errors.New("other"), "failed"},
	}
	for _, tc := range tests {
		if got := services.OutcomeFor(tc.err); got != tc.want {
			t.Fatalf("OutcomeFor(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
