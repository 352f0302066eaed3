// Package config loads and validates replay's TOML configuration. Path fields
// are expanded and normalized at load time so the rest of the codebase only
// ever sees absolute paths, and validation runs before any network or store
// handle is constructed.
package config
