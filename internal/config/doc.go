// Package config loads, normalizes, and validates discshelf configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ANTHROPIC_API_KEY and TMDB_API_KEY. The Config type centralizes every knob
// the daemon and CLI need, so data/sources/processed directories and external
// service credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
