// Package textutil provides the name-cleaning helpers used when resolved
// metadata values become folder and file names.
//
//   - SanitizeFileName strips characters that are unsafe in a single path
//     component while keeping case and spacing.
//   - Slugify produces the lowercase dash-separated form used for file-name
//     components.
package textutil
