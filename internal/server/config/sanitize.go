// Package config defines the server configuration structure.
package config

import "github.com/bradthebeeble/ignite/internal/telemetry/logger"

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	// Create a shallow copy
	sanitized := *cfg

	// Mask sensitive fields
	if sanitized.HTTP.AuthToken != "" {
		sanitized.HTTP.AuthToken = maskToken(sanitized.HTTP.AuthToken)
	}

	return &sanitized
}

// maskToken masks a bearer token for safe logging. Tokens following the
// igat_ convention keep a short prefix and suffix visible; anything else
// is fully redacted.
func maskToken(s string) string {
	if masked := logger.RedactString(s); masked != s {
		return masked
	}
	return "***REDACTED***"
}
