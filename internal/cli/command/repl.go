// Package command provides CLI command definitions for ignite-cli.
package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/bradthebeeble/ignite/internal/cli/repl"
)

// ReplCommand returns the interactive shell command.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:    "repl",
		Aliases: []string{"shell"},
		Usage:   "Start an interactive shell",
		Action:  replAction,
	}
}

func replAction(c *cli.Context) error {
	mgr := GetConnectionManager(c)
	configPath := configFilePath(c)
	inherited := inheritedArgs(c)

	fmt.Println("Ignite interactive shell. Type 'help' for commands, 'exit' to leave.")

	// Each line runs as a fresh invocation. Seeding the metadata keeps
	// one connection manager alive across the whole session, so a
	// 'connect' stays pinned for later commands.
	r := repl.New(func(args []string) error {
		app := App()
		app.Metadata = map[string]any{
			"connMgr":    mgr,
			"configPath": configPath,
		}
		argv := append([]string{"ignite-cli"}, inherited...)
		argv = append(argv, args...)
		return app.Run(argv)
	})
	return r.Run()
}

// inheritedArgs rebuilds the global flags set on the outer invocation so
// every shell command sees them again.
func inheritedArgs(c *cli.Context) []string {
	var args []string
	for _, name := range []string{"server", "token", "socket", "profile", "output"} {
		if c.IsSet(name) {
			args = append(args, "--"+name, c.String(name))
		}
	}
	if c.Bool("wide") {
		args = append(args, "--wide")
	}
	if c.Bool("verbose") {
		args = append(args, "--verbose")
	}
	return args
}
