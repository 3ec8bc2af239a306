// Package config loads and merges clihelper configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (CLIHELPER_PROVIDER, CLIHELPER_MODEL, CLIHELPER_MAX_TOKENS, etc.)
//  3. Config file ($XDG_CONFIG_HOME/clihelper/config.yaml)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write the config file,
// and [SetField] to update a single key.
package config
