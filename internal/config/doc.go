// Package config loads, validates, and normalizes intake's TOML configuration.
//
// Load resolves the config file (explicit path, ~/.config/intake/config.toml,
// or intake.toml in the working directory), fills defaults, expands ~ in path
// fields, and validates the result. The embedded sample_config.toml documents
// every field and backs the `intake config init` command.
package config
