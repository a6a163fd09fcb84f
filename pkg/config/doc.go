// Package config loads and validates the service configuration from YAML,
// with defaults applied for anything omitted and environment variable
// overrides (AEGIS_SECTION_FIELD) taking precedence over the file.
package config
