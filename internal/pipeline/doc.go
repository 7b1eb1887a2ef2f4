// Package pipeline places media files into the organized library.
//
// A Pipeline handles one file at a time: it validates the media, resolves the
// destination from the cached folder and name definitions, applies duplicate
// and collision rules, runs plugin hooks, moves or copies the file through the
// fileops executor, and normalizes its modification time. The Importer walks
// source trees, applies exclusion patterns, and aggregates per-file results
// into a Summary.
package pipeline
