// Package config loads, validates, and normalizes yammer's TOML
// configuration. Defaults form a complete configuration; a missing config
// file is not an error. Paths are tilde-expanded and made absolute during
// normalization.
package config
