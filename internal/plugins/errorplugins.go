package plugins

import (
	"context"
	"errors"

	"mediaorg/internal/media"
)

// ThrowError vetoes every file. Used to exercise the rejection path.
type ThrowError struct{}

func (ThrowError) Name() string { return "throwerror" }

func (ThrowError) Before(context.Context, string, string, string, media.Metadata) error {
	return HardFailure("throwerror", "vetoed by throwerror plugin")
}

func (ThrowError) After(context.Context, string, string, string, media.Metadata) error { return nil }

func (ThrowError) Batch(context.Context) (bool, int, error) {
	return false, 0, HardFailure("throwerror", "batch vetoed by throwerror plugin")
}

// RuntimeError fails every hook softly.
type RuntimeError struct{}

func (RuntimeError) Name() string { return "runtimeerror" }

func (RuntimeError) Before(context.Context, string, string, string, media.Metadata) error {
	return errors.New("runtimeerror plugin before hook")
}

func (RuntimeError) After(context.Context, string, string, string, media.Metadata) error {
	return errors.New("runtimeerror plugin after hook")
}

func (RuntimeError) Batch(context.Context) (bool, int, error) {
	return false, 0, errors.New("runtimeerror plugin batch")
}
