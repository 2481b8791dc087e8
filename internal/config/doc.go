// Package config loads, normalizes, and validates AGORA client configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AGORA_TOKEN and AGORA_API_URL. The Config type centralizes every knob the CLI
// needs: where the backend lives, how long requests may take, which uploads are
// acceptable, and where local state and exports are written.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
