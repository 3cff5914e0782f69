// Package repl provides the interactive REPL mode for ignite-cli.
package repl

import "strings"

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a new Completer.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{
			"check",
			"operations", "operations list", "operations status", "operations cancel",
			"snapshots", "snapshots list", "snapshots show",
			"cluster", "cluster info", "cluster activate", "cluster deactivate", "cluster baseline",
			"health",
			"config", "config show", "config set", "config use",
			"connect", "disconnect",
			"help", "exit", "quit",
		},
	}
}

// Complete returns completion suggestions for the given prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
