// Package library maintains the hash database against an organized library
// tree: rebuilding it from the files on disk and verifying recorded checksums.
package library
