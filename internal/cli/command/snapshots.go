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

// SnapshotsCommand returns the snapshots subcommand group.
func SnapshotsCommand() *cli.Command {
	return &cli.Command{
		Name:    "snapshots",
		Aliases: []string{"snap"},
		Usage:   "Inspect registered snapshots",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List registered snapshots",
				Action: snapshotsList,
			},
			{
				Name:      "show",
				Usage:     "Show one snapshot's descriptor",
				ArgsUsage: "NAME",
				Action:    snapshotsShow,
			},
		},
	}
}

// snapshotRow is the table projection of one registry entry.
type snapshotRow struct {
	Name    string `json:"name"`
	Created string `json:"created"`
	Epoch   uint64 `json:"epoch"`
	Nodes   int    `json:"nodes"`
	Groups  int    `json:"groups"`
	ID      string `json:"id" table:"wide"`
}

func snapshotsList(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, "/v1/snapshots")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		Items []struct {
			Name         string `json:"name"`
			ID           string `json:"id"`
			CreatedAt    int64  `json:"created_at"`
			ClusterEpoch uint64 `json:"cluster_epoch"`
			Nodes        int    `json:"nodes"`
			Groups       int    `json:"groups"`
		} `json:"items"`
		Total int `json:"total"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	switch output.Format(flags.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
		return formatter.Format(os.Stdout, result)
	default:
		rows := make([]snapshotRow, 0, len(result.Items))
		for _, s := range result.Items {
			rows = append(rows, snapshotRow{
				Name:    s.Name,
				Created: formatMillis(s.CreatedAt),
				Epoch:   s.ClusterEpoch,
				Nodes:   s.Nodes,
				Groups:  s.Groups,
				ID:      s.ID,
			})
		}
		formatter := &output.TableFormatter{Wide: flags.Wide}
		if err := formatter.Format(os.Stdout, rows); err != nil {
			return err
		}
		fmt.Printf("\nTotal: %d snapshots\n", result.Total)
		return nil
	}
}

func snapshotsShow(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("snapshot name required")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, "/v1/snapshots/"+name)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var desc struct {
		Name         string `json:"name"`
		ID           string `json:"id"`
		CreatedAt    int64  `json:"created_at"`
		ClusterEpoch uint64 `json:"cluster_epoch"`
		Baseline     []struct {
			ID      string `json:"id"`
			Address string `json:"address"`
		} `json:"baseline"`
		Groups []struct {
			ID         uint32 `json:"id"`
			Name       string `json:"name"`
			Partitions uint32 `json:"partitions"`
			Backups    int    `json:"backups"`
			NodeFilter string `json:"node_filter,omitempty"`
		} `json:"groups"`
	}
	if err := connection.ParseResponse(resp, &desc); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	switch output.Format(flags.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
		return formatter.Format(os.Stdout, desc)
	default:
		fmt.Printf("Snapshot: %s\n", desc.Name)
		fmt.Printf("ID:       %s\n", desc.ID)
		fmt.Printf("Created:  %s\n", formatMillis(desc.CreatedAt))
		fmt.Printf("Epoch:    %d\n", desc.ClusterEpoch)

		if len(desc.Baseline) > 0 {
			fmt.Printf("\nBaseline nodes [count=%d]\n", len(desc.Baseline))
			table := &output.Table{Headers: []string{"NODE", "ADDRESS"}}
			for _, n := range desc.Baseline {
				table.AddRow(n.ID, n.Address)
			}
			if err := table.Render(os.Stdout); err != nil {
				return err
			}
		}

		if len(desc.Groups) > 0 {
			fmt.Printf("\nCache groups [count=%d]\n", len(desc.Groups))
			table := &output.Table{Headers: []string{"ID", "NAME", "PARTITIONS", "BACKUPS", "FILTER"}}
			for _, g := range desc.Groups {
				filter := g.NodeFilter
				if filter == "" {
					filter = "-"
				}
				table.AddRow(
					fmt.Sprintf("%d", g.ID),
					g.Name,
					fmt.Sprintf("%d", g.Partitions),
					fmt.Sprintf("%d", g.Backups),
					filter,
				)
			}
			if err := table.Render(os.Stdout); err != nil {
				return err
			}
		}
		return nil
	}
}
