// Package command provides CLI command definitions for ignite-cli.
package command

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/bradthebeeble/ignite/internal/cli/config"
	"github.com/bradthebeeble/ignite/internal/cli/output"
)

// ConfigCommand returns the config subcommand group for managing saved
// connection profiles.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage CLI configuration and connection profiles",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show CLI configuration and saved profiles",
				Action: configShow,
			},
			{
				Name:      "set",
				Usage:     "Create or update a connection profile",
				ArgsUsage: "NAME",
				Description: "Saves a named connection profile to the CLI config file.\n" +
					"A profile needs an HTTP endpoint or a unix socket path:\n\n" +
					"   ignite-cli config set prod --endpoint 10.0.0.5:8080 --token igat_...\n" +
					"   ignite-cli config set local --socket /var/run/ignite/mgmt.sock --use",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "endpoint",
						Usage: "Management API address (host:port or URL)",
					},
					&cli.StringFlag{
						Name:  "token",
						Usage: "Bearer token sent with every request",
					},
					&cli.StringFlag{
						Name:  "socket",
						Usage: "Unix socket path of a local server",
					},
					&cli.BoolFlag{
						Name:  "use",
						Usage: "Make this the current profile",
					},
				},
				Action: configSet,
			},
			{
				Name:      "use",
				Usage:     "Switch the current profile",
				ArgsUsage: "NAME",
				Action:    configUse,
			},
		},
	}
}

// profileRow is the display projection of a saved profile. Tokens are
// masked before they reach any output format.
type profileRow struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint,omitempty"`
	Socket   string `json:"socket,omitempty"`
	Token    string `json:"token,omitempty"`
	Current  bool   `json:"current"`
}

func configShow(c *cli.Context) error {
	path := configFilePath(c)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]profileRow, 0, len(names))
	for _, name := range names {
		p := cfg.Profiles[name]
		rows = append(rows, profileRow{
			Name:     name,
			Endpoint: p.Endpoint,
			Socket:   p.Socket,
			Token:    maskToken(p.Token),
			Current:  name == cfg.CurrentProfile,
		})
	}

	flags := ParseGlobalFlags(c)
	switch output.Format(flags.Output) {
	case output.FormatJSON, output.FormatYAML:
		view := struct {
			ConfigFile     string       `json:"config_file"`
			DefaultOutput  string       `json:"default_output"`
			CurrentProfile string       `json:"current_profile,omitempty"`
			Profiles       []profileRow `json:"profiles"`
		}{
			ConfigFile:     path,
			DefaultOutput:  cfg.DefaultOutput,
			CurrentProfile: cfg.CurrentProfile,
			Profiles:       rows,
		}
		formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
		return formatter.Format(os.Stdout, view)
	default:
		fmt.Printf("Config file:     %s\n", path)
		fmt.Printf("Default output:  %s\n", cfg.DefaultOutput)
		current := cfg.CurrentProfile
		if current == "" {
			current = "-"
		}
		fmt.Printf("Current profile: %s\n", current)
		fmt.Println()

		if len(rows) == 0 {
			fmt.Println("(no profiles configured)")
			return nil
		}
		formatter := &output.TableFormatter{Wide: flags.Wide}
		return formatter.Format(os.Stdout, rows)
	}
}

func configSet(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("profile name required")
	}

	path := configFilePath(c)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	// Upsert: start from the existing profile so a token can be rotated
	// without repeating the endpoint.
	p := cfg.Profiles[name]
	if c.IsSet("endpoint") {
		p.Endpoint = c.String("endpoint")
	}
	if c.IsSet("token") {
		p.Token = c.String("token")
	}
	if c.IsSet("socket") {
		p.Socket = c.String("socket")
	}
	if p.Endpoint == "" && p.Socket == "" {
		return fmt.Errorf("profile %q needs --endpoint or --socket", name)
	}

	cfg.SetProfile(name, p)
	selected := c.Bool("use") || cfg.CurrentProfile == ""
	if selected {
		cfg.CurrentProfile = name
	}

	if err := config.Save(cfg, path); err != nil {
		return err
	}

	fmt.Printf("Profile %q saved.\n", name)
	if selected {
		fmt.Printf("Current profile set to %q.\n", name)
	}
	return nil
}

func configUse(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("profile name required")
	}

	path := configFilePath(c)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if _, ok := cfg.Profiles[name]; !ok {
		return fmt.Errorf("unknown profile %q", name)
	}

	cfg.CurrentProfile = name
	if err := config.Save(cfg, path); err != nil {
		return err
	}

	fmt.Printf("Current profile set to %q.\n", name)
	return nil
}

// maskToken hides the bulk of a bearer token while keeping enough of it
// to tell profiles apart.
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if i := strings.Index(token, "_"); i > 0 && i < 10 && len(token) > i+7 {
		body := token[i+1:]
		return token[:i+1] + body[:3] + "..." + body[len(body)-3:]
	}
	return "***"
}
