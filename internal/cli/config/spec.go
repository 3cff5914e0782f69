// Package config defines the CLI configuration structure.
package config

// CLIConfig is the configuration for ignite-cli.
type CLIConfig struct {
	// DefaultOutput selects the output format (table, json, yaml).
	DefaultOutput string `koanf:"default_output"`

	// Profiles are saved connection targets keyed by name.
	Profiles map[string]Profile `koanf:"profiles"`

	// CurrentProfile names the active profile. Empty means ad-hoc
	// connection settings from flags.
	CurrentProfile string `koanf:"current_profile"`
}

// Profile stores one saved connection target. A profile addresses the
// management API either over TCP (Endpoint, with an optional bearer
// token) or over the local unix socket (Socket). When both are set the
// socket wins; local access needs no token.
type Profile struct {
	// Endpoint is the management API base URL, e.g. http://127.0.0.1:8080.
	Endpoint string `koanf:"endpoint"`

	// Token is the bearer token sent with every request. Optional.
	Token string `koanf:"token"`

	// Socket is the path of the server's local unix socket.
	Socket string `koanf:"socket"`
}

// Default returns the default CLI configuration: no profiles, table
// output, pointing at a local server.
func Default() *CLIConfig {
	return &CLIConfig{
		DefaultOutput: "table",
		Profiles:      make(map[string]Profile),
	}
}

// Profile returns the named profile. An empty name resolves
// CurrentProfile first.
func (c *CLIConfig) Profile(name string) (Profile, bool) {
	if name == "" {
		name = c.CurrentProfile
	}
	if name == "" {
		return Profile{}, false
	}
	p, ok := c.Profiles[name]
	return p, ok
}

// SetProfile stores or replaces the named profile.
func (c *CLIConfig) SetProfile(name string, p Profile) {
	if c.Profiles == nil {
		c.Profiles = make(map[string]Profile)
	}
	c.Profiles[name] = p
}
