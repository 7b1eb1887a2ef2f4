// Package exiftool reads and writes the XMP tags the importer uses to remember
// a file's original name, title, and album across imports.
package exiftool
