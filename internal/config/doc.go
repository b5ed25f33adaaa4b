// Package config loads, normalizes, and validates blobmeta CLI configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts) and
// reads TOML files. The Config type carries the probe switches, output
// preferences and logging settings the CLI needs.
package config
