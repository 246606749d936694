// Package config loads splyt's TOML configuration.
//
// Load starts from Default, decodes the file if one exists, applies SPLYT_*
// environment overrides, expands paths and validates the result. The
// default output directory depends on the platform and is resolved here
// once so the pipeline never consults the environment itself.
package config
