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

// ClusterCommand returns the cluster subcommand group.
func ClusterCommand() *cli.Command {
	return &cli.Command{
		Name:  "cluster",
		Usage: "Cluster state and control",
		Subcommands: []*cli.Command{
			{
				Name:   "info",
				Usage:  "Show cluster membership and control state",
				Action: clusterInfo,
			},
			{
				Name:   "activate",
				Usage:  "Activate the cluster",
				Action: clusterActivate,
			},
			{
				Name:  "deactivate",
				Usage: "Deactivate the cluster",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: clusterDeactivate,
			},
			{
				Name:  "baseline",
				Usage: "Pin the baseline to the current live topology",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: clusterBaseline,
			},
		},
	}
}

// clusterDetail mirrors the API's cluster info shape.
type clusterDetail struct {
	Active        bool   `json:"active"`
	LeaderID      string `json:"leader_id,omitempty"`
	LeaderAddr    string `json:"leader_addr,omitempty"`
	BaselineEpoch uint64 `json:"baseline_epoch"`
	Members       []struct {
		ID         string            `json:"id"`
		RPCAddr    string            `json:"rpc_addr"`
		RaftAddr   string            `json:"raft_addr"`
		Attributes map[string]string `json:"attributes,omitempty"`
		IsLeader   bool              `json:"is_leader"`
	} `json:"members"`
	Baseline []struct {
		ID      string `json:"id"`
		Address string `json:"address"`
	} `json:"baseline,omitempty"`
	Groups []struct {
		ID         uint32 `json:"id"`
		Name       string `json:"name"`
		Partitions uint32 `json:"partitions"`
	} `json:"groups,omitempty"`
}

func clusterInfo(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, "/v1/cluster")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var info clusterDetail
	if err := connection.ParseResponse(resp, &info); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	switch output.Format(flags.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
		return formatter.Format(os.Stdout, info)
	default:
		state := "inactive"
		if info.Active {
			state = "active"
		}
		fmt.Printf("Cluster state:  %s\n", state)
		if info.LeaderID != "" {
			fmt.Printf("Leader:         %s (%s)\n", info.LeaderID, info.LeaderAddr)
		} else {
			fmt.Printf("Leader:         none elected\n")
		}
		fmt.Printf("Baseline epoch: %d\n", info.BaselineEpoch)
		fmt.Printf("Baseline nodes: %d\n", len(info.Baseline))
		fmt.Printf("Cache groups:   %d\n", len(info.Groups))

		fmt.Printf("\nMembers [count=%d]\n", len(info.Members))
		table := &output.Table{Headers: []string{"NODE", "RPC", "RAFT", "ROLE"}}
		for _, m := range info.Members {
			role := "follower"
			if m.IsLeader {
				role = "leader"
			}
			table.AddRow(m.ID, m.RPCAddr, m.RaftAddr, role)
		}
		return table.Render(os.Stdout)
	}
}

func clusterActivate(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Post(ctx, "/v1/cluster/activate", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		Active bool `json:"active"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	fmt.Println("Cluster activated.")
	return nil
}

func clusterDeactivate(c *cli.Context) error {
	if !c.Bool("force") {
		fmt.Print("Deactivating stops check coordination cluster-wide. Continue? [y/N]: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Post(ctx, "/v1/cluster/deactivate", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	fmt.Println("Cluster deactivated.")
	return nil
}

func clusterBaseline(c *cli.Context) error {
	if !c.Bool("force") {
		fmt.Print("Pin the baseline to the current live topology? [y/N]: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Post(ctx, "/v1/cluster/baseline", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		BaselineEpoch uint64 `json:"baseline_epoch"`
		Nodes         int    `json:"nodes"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	fmt.Printf("Baseline set: epoch %d, %d nodes.\n", result.BaselineEpoch, result.Nodes)
	return nil
}
