// Package config loads, normalizes, and validates metmaster configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// METMASTER_OUTPUT_ROOT. The Config type centralizes every knob the build
// pipeline and CLI need, so input paths, the release output root, batch sizing
// and logging are resolved in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
