// Package command provides CLI command definitions for ignite-cli.
package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/bradthebeeble/ignite/internal/cli/connection"
	"github.com/bradthebeeble/ignite/internal/cli/output"
)

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check server health and readiness",
		Action: healthAction,
	}
}

func healthAction(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, "/health")
	if err != nil {
		PrintError("health check failed: %v", err)
		return fmt.Errorf("server unreachable")
	}

	var health struct {
		Status string `json:"status"`
		Time   string `json:"time"`
	}
	if err := connection.ParseResponse(resp, &health); err != nil {
		return err
	}

	// Readiness is separate: a live node still refuses checks until the
	// cluster has an elected leader.
	ready := struct {
		Status string `json:"status"`
		Leader string `json:"leader,omitempty"`
	}{Status: "not ready"}

	if resp, err := client.Get(ctx, "/ready"); err == nil {
		if err := connection.ParseResponse(resp, &ready); err != nil {
			ready.Status = "not ready"
			ready.Leader = ""
		}
	}

	flags := ParseGlobalFlags(c)
	switch output.Format(flags.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
		return formatter.Format(os.Stdout, map[string]any{
			"target": client.Target(),
			"health": health.Status,
			"ready":  ready.Status,
			"leader": ready.Leader,
		})
	default:
		if health.Status == "healthy" {
			fmt.Printf("✓ Server is healthy\n")
		} else {
			fmt.Printf("✗ Server is unhealthy: %s\n", health.Status)
		}
		fmt.Printf("  Target: %s\n", client.Target())
		if ready.Status == "ready" {
			fmt.Printf("✓ Node is ready (leader: %s)\n", ready.Leader)
		} else {
			fmt.Printf("✗ Node is not ready (no raft leader)\n")
		}
		if health.Status != "healthy" || ready.Status != "ready" {
			return fmt.Errorf("server not ready")
		}
		return nil
	}
}
