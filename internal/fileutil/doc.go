// Package fileutil holds the byte-level file helpers shared by the executor,
// the pipeline, and the hash database: verified copies, SHA256 checksums, and
// content comparison.
package fileutil
