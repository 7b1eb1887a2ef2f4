// Package deps checks that the external binaries referenced by the
// configuration can be found on PATH.
package deps
