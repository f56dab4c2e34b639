// Package config loads, validates, and defaults the TOML configuration used
// by the CLI and the HTTP API server.
package config
