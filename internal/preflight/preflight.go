package preflight

import (
	"context"
	"path/filepath"
	"slices"

	"mediaorg/internal/config"
	"mediaorg/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes the checks that apply to cfg. Network checks only run for
// enabled features.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Database directory", filepath.Dir(cfg.Paths.Database)),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Trash directory", cfg.Paths.TrashDir),
	}

	if cfg.Geolocation.Enabled {
		results = append(results, CheckEndpoint(ctx, "Geolocation", cfg.Geolocation.BaseURL))
	}
	if slices.Contains(cfg.PluginNames(), "googlephotos") {
		results = append(results, CheckToken("Google Photos token", cfg.GooglePhotos.Token))
	}

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		detail := status.Command
		if !status.Available {
			detail = status.Detail
		}
		results = append(results, Result{
			Name:     status.Name,
			Passed:   status.Available,
			Optional: status.Optional,
			Detail:   detail,
		})
	}
	return results
}

// Failed returns the non-optional checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}
