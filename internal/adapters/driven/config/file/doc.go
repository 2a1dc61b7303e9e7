// Package file provides the TOML-backed implementation of the
// configuration store. Settings live in a single config.toml inside the
// folder-mcp config directory; nested tables are exposed to callers as
// dot-notation keys.
package file
