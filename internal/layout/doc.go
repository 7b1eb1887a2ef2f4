// Package layout parses the path templating language into Definitions and
// caches the results.
//
// A folder template such as `%date/%album|%location|"Unknown Location"` is
// parsed in two phases: Tokenize splits it into segments ('/') and
// alternatives ('|'), then each token is resolved by name against the
// [directory] macro table. Tokens resolve to metadata fields, date formats,
// location masks, quoted literals, or composites of other tokens. An
// undefined reference is a *DefinitionError, which callers answer with the
// built-in DefaultFolderDefinition rather than failing.
//
// File-name templates use ParseName, where literal text between %tokens is
// kept as separator segments.
//
// Cache memoizes both definitions per config identity until Invalidate.
package layout
