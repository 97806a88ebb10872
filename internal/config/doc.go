// Package config loads and merges reviser configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (REVISER_DEVELOPMENT, REVISER_MANIFEST, etc.)
//  3. Config file ($XDG_CONFIG_HOME/reviser/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged and validated [Config], [Save] to write a
// config file, and [SetField] to update a single key.
package config
