// Package services defines shared error markers and context helpers consumed by
// the processing pipeline, its plugins, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, source paths, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so per-file failures can be
//     classified (invalid, duplicate, rejected, failed) without string matching.
//
// Use these helpers when wiring new pipeline or plugin code so error handling
// and observability stay uniform.
package services
