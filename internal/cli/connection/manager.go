// Package connection provides connection management for ignite-cli.
package connection

import (
	"fmt"

	"github.com/bradthebeeble/ignite/internal/cli/config"
)

// Manager resolves saved profiles to clients and tracks which target the
// session is talking to. The REPL keeps one manager across commands;
// one-shot invocations build a fresh one per run.
type Manager struct {
	cfg     *config.CLIConfig
	current *Client
	name    string
}

// NewManager creates a manager over the loaded CLI configuration.
func NewManager(cfg *config.CLIConfig) *Manager {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Manager{cfg: cfg}
}

// Config returns the CLI configuration the manager resolves against.
func (m *Manager) Config() *config.CLIConfig {
	return m.cfg
}

// ClientFor builds a client for one profile. A profile with both a
// socket and an endpoint prefers the socket; local access needs no
// token.
func (m *Manager) ClientFor(p config.Profile) *Client {
	if p.Socket != "" {
		return NewSocketClient(p.Socket)
	}
	return NewClient(p.Endpoint, p.Token)
}

// Connect resolves the named profile (or the current one when name is
// empty) and makes it the active connection.
func (m *Manager) Connect(name string) (*Client, error) {
	p, ok := m.cfg.Profile(name)
	if !ok {
		if name == "" {
			return nil, fmt.Errorf("no profile selected; run 'config use' or pass --profile")
		}
		return nil, fmt.Errorf("unknown profile %q", name)
	}
	if p.Socket == "" && p.Endpoint == "" {
		return nil, fmt.Errorf("profile %q has neither endpoint nor socket", name)
	}

	client := m.ClientFor(p)
	m.current = client
	if name == "" {
		name = m.cfg.CurrentProfile
	}
	m.name = name
	return client, nil
}

// SetCurrent records an ad-hoc connection built from flags.
func (m *Manager) SetCurrent(name string, client *Client) {
	m.name = name
	m.current = client
}

// Current returns the active client, nil when not connected.
func (m *Manager) Current() *Client {
	return m.current
}

// CurrentName returns the active profile name, empty for ad-hoc
// connections.
func (m *Manager) CurrentName() string {
	return m.name
}

// IsConnected reports whether an active connection exists.
func (m *Manager) IsConnected() bool {
	return m.current != nil
}

// Disconnect drops the active connection.
func (m *Manager) Disconnect() {
	m.current = nil
	m.name = ""
}
