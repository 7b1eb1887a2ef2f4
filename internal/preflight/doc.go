// Package preflight verifies that the configured directories, external
// binaries, and enabled network services are usable before an import.
//
// Checks return Results instead of errors so callers can render every
// problem at once; Failed filters the ones that should stop a run.
package preflight
