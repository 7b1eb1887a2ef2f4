// Package store owns the SQLite database shared by the importer.
//
// It keeps three tables: the content-hash index used for duplicate
// detection, per-plugin work queues that survive between runs, and a small
// cache of reverse-geocode answers keyed by coordinate. All writes retry on
// SQLITE_BUSY so concurrent batch workers can share one file.
package store
