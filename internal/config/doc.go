// Package config loads and validates shelver's TOML configuration.
//
// Configuration lives at ~/.config/shelver/config.toml by default, with a
// project-local shelver.toml fallback. All path fields are tilde-expanded
// and made absolute during load, so downstream code never sees relative or
// unexpanded paths. The library root is always explicit configuration,
// never a compiled-in constant.
package config
