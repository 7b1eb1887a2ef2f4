// Package naming turns parsed layout definitions and a metadata snapshot into
// a library folder and file name.
package naming
