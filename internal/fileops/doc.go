// Package fileops performs the filesystem mutations of an import: move,
// copy, remove, trash, and mkdir. In dry-run mode each mutation prints a
// single "[DRY-RUN] Would ..." line instead of touching the filesystem.
package fileops
