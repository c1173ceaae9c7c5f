// Package config loads, normalizes, and validates the TOML configuration
// controlling delay analysis, chapter adjustment, and merge plan building.
package config
