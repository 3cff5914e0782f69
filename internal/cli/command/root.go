// Package command provides CLI command definitions for ignite-cli.
//
// It uses urfave/cli/v2 for command parsing and supports both
// single-command mode and interactive REPL mode.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/bradthebeeble/ignite/internal/cli/config"
	"github.com/bradthebeeble/ignite/internal/cli/connection"
	"github.com/bradthebeeble/ignite/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "ignite-cli",
		Usage:   "Ignite snapshot verification management tool",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			CheckCommand(),
			OperationsCommand(),
			SnapshotsCommand(),
			ClusterCommand(),
			HealthCommand(),
			ConfigCommand(),
			ConnectCommand(),
			DisconnectCommand(),
			ReplCommand(),
		},
		Before: func(c *cli.Context) error {
			// Load saved profiles; a broken config file degrades to
			// defaults so every command stays usable.
			path := config.DefaultConfigPath()
			if p, ok := c.App.Metadata["configPath"].(string); ok && p != "" {
				path = p
			}
			cfg, err := config.Load(path)
			if err != nil {
				PrintError("config %s: %v (using defaults)", path, err)
				cfg = config.Default()
			}
			// The REPL pre-seeds both entries so one session keeps a
			// single manager across commands.
			if _, ok := c.App.Metadata["connMgr"]; !ok {
				c.App.Metadata["connMgr"] = connection.NewManager(cfg)
			}
			if _, ok := c.App.Metadata["configPath"]; !ok {
				c.App.Metadata["configPath"] = path
			}
			return nil
		},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Ignite server address (e.g., 127.0.0.1:8080)",
			EnvVars: []string{"IGNITE_SERVER"},
			Value:   "127.0.0.1:8080",
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "Bearer token for management API authentication",
			EnvVars: []string{"IGNITE_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "socket",
			Usage:   "Connect over the server's local unix socket",
			EnvVars: []string{"IGNITE_SOCKET"},
		},
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Usage:   "Saved connection profile to use",
			EnvVars: []string{"IGNITE_PROFILE"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable verbose output",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	// Server connection
	Server  string
	Token   string
	Socket  string
	Profile string

	// Output format
	Output string // table, json, yaml
	Wide   bool

	// Other
	Verbose bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		Token:   c.String("token"),
		Socket:  c.String("socket"),
		Profile: c.String("profile"),
		Output:  c.String("output"),
		Wide:    c.Bool("wide"),
		Verbose: c.Bool("verbose"),
	}
}

// GetConnectionManager retrieves the connection manager from context.
func GetConnectionManager(c *cli.Context) *connection.Manager {
	if mgr, ok := c.App.Metadata["connMgr"].(*connection.Manager); ok {
		return mgr
	}
	return nil
}

// configFilePath returns the CLI config file path for this invocation.
func configFilePath(c *cli.Context) string {
	if path, ok := c.App.Metadata["configPath"].(string); ok && path != "" {
		return path
	}
	return config.DefaultConfigPath()
}

// EnsureConnected resolves the target server for this invocation and
// returns a client for it. Explicit connection flags outrank profiles;
// without either, a local default server is assumed.
func EnsureConnected(c *cli.Context) (*connection.Client, error) {
	flags := ParseGlobalFlags(c)

	if flags.Socket != "" {
		return connection.NewSocketClient(flags.Socket), nil
	}
	if c.IsSet("server") {
		return connection.NewClient(flags.Server, flags.Token), nil
	}

	if mgr := GetConnectionManager(c); mgr != nil {
		// The REPL reuses the session's connection.
		if mgr.IsConnected() && flags.Profile == "" {
			return mgr.Current(), nil
		}
		if flags.Profile != "" || mgr.Config().CurrentProfile != "" {
			return mgr.Connect(flags.Profile)
		}
	}

	return connection.NewClient(flags.Server, flags.Token), nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
