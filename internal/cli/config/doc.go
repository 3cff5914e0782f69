// Package config provides CLI configuration for Ignite.
//
// This package defines CLI-specific configuration:
//
//   - spec.go: CLIConfig struct (~/.ignite/cli.yaml)
//   - loader.go: Configuration loading and saving
//
// The file holds named connection profiles (HTTP endpoint plus optional
// bearer token, or a local unix socket path), the active profile and the
// preferred output format. IGNITE_CLI_* environment variables override
// file values.
//
// @design DS-0601
package config
