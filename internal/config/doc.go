// Package config loads, normalizes, and validates mediaorg configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MEDIAORG_GEO_API_KEY. Besides the ambient sections (paths, logging, plugin
// settings) the Config carries the raw template surface consumed by the
// layout package: [file] date/name/capitalization, the free-form [directory]
// macro table with full_path, and the [plugins] list.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
