// Package command provides CLI command definitions for ignite-cli.
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/bradthebeeble/ignite/internal/cli/config"
	"github.com/bradthebeeble/ignite/internal/cli/connection"
)

// ConnectCommand returns the connect command.
func ConnectCommand() *cli.Command {
	return &cli.Command{
		Name:      "connect",
		Usage:     "Connect to an Ignite server and verify it responds",
		ArgsUsage: "[PROFILE]",
		Description: "Pings the server's health endpoint. With a profile name the\n" +
			"profile becomes current and the connection stays pinned for the\n" +
			"session; without one the usual flag and profile resolution applies.",
		Action: connectAction,
	}
}

func connectAction(c *cli.Context) error {
	mgr := GetConnectionManager(c)
	if mgr == nil {
		return fmt.Errorf("connection manager not initialized")
	}

	name := c.Args().First()

	var (
		client *connection.Client
		err    error
	)
	if name != "" {
		client, err = mgr.Connect(name)
	} else {
		client, err = EnsureConnected(c)
	}
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, "/health")
	if err != nil {
		return fmt.Errorf("connect %s: %w", client.Target(), err)
	}
	if err := connection.ParseResponse(resp, nil); err != nil {
		return fmt.Errorf("connect %s: %w", client.Target(), err)
	}

	// Pin ad-hoc connections too so the REPL reuses them.
	if mgr.Current() != client {
		mgr.SetCurrent(name, client)
	}

	fmt.Printf("Connected to %s\n", client.Target())

	if name != "" {
		persistCurrentProfile(c, name)
	}
	return nil
}

// persistCurrentProfile records the last explicitly connected profile so
// later invocations default to it. Failures are reported but not fatal;
// the session connection already works.
func persistCurrentProfile(c *cli.Context, name string) {
	path := configFilePath(c)
	cfg, err := config.Load(path)
	if err != nil {
		PrintError("config %s: %v", path, err)
		return
	}
	if _, ok := cfg.Profiles[name]; !ok || cfg.CurrentProfile == name {
		return
	}
	cfg.CurrentProfile = name
	if err := config.Save(cfg, path); err != nil {
		PrintError("save config: %v", err)
	}
}

// DisconnectCommand returns the disconnect command. It matters mostly in
// the REPL, where one connection is shared across commands.
func DisconnectCommand() *cli.Command {
	return &cli.Command{
		Name:   "disconnect",
		Usage:  "Drop the pinned server connection",
		Action: disconnectAction,
	}
}

func disconnectAction(c *cli.Context) error {
	mgr := GetConnectionManager(c)
	if mgr == nil {
		return fmt.Errorf("connection manager not initialized")
	}

	if !mgr.IsConnected() {
		fmt.Println("Not connected to any server")
		return nil
	}

	mgr.Disconnect()
	fmt.Println("Disconnected")
	return nil
}
