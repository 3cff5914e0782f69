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

// CheckCommand returns the check command.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Verify a snapshot across the whole cluster",
		ArgsUsage: "SNAPSHOT",
		Description: "Starts a cluster-wide verification of the named snapshot and waits\n" +
			"for the verdict. Every baseline node reads its own snapshot files;\n" +
			"the report lists missing partitions, corrupt pages and update\n" +
			"counter conflicts.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "detach",
				Aliases: []string{"d"},
				Usage:   "Start the check and print the operation id without waiting",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 30 * time.Minute,
				Usage: "Max time to wait for the verdict (0 waits forever)",
			},
			&cli.DurationFlag{
				Name:  "poll-interval",
				Value: 500 * time.Millisecond,
				Usage: "Operation status poll interval",
			},
		},
		Action: checkAction,
	}
}

func checkAction(c *cli.Context) error {
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

	resp, err := client.Post(ctx, "/v1/snapshots/"+name+"/check", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var started struct {
		OperationID string `json:"operation_id"`
		Snapshot    string `json:"snapshot"`
		Status      string `json:"status"`
	}
	if err := connection.ParseResponse(resp, &started); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	if c.Bool("detach") {
		switch output.Format(flags.Output) {
		case output.FormatJSON, output.FormatYAML:
			formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
			return formatter.Format(os.Stdout, started)
		default:
			fmt.Printf("Check started: %s\n", started.OperationID)
			fmt.Printf("Poll with: ignite-cli operations status %s\n", started.OperationID)
			return nil
		}
	}

	op, err := waitForVerdict(c, client, started.OperationID, name)
	if err != nil {
		return err
	}
	if err := renderOperation(flags, op); err != nil {
		return err
	}
	return operationExitError(op)
}

// waitForVerdict polls the operation until it leaves the running state.
// The spinner animates on stderr so stdout stays machine-readable.
func waitForVerdict(c *cli.Context, client *connection.Client, id, snapshot string) (*operationDetail, error) {
	spin := output.NewSpinner(os.Stderr, fmt.Sprintf("Verifying snapshot %q", snapshot))
	spin.Start()

	interval := c.Duration("poll-interval")
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	timeout := c.Duration("timeout")
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		op, err := fetchOperation(client, id)
		if err != nil {
			spin.Fail("status poll failed")
			return nil, err
		}

		if op.Status != "running" {
			switch {
			case op.Status == "completed" && op.clean():
				spin.Success(fmt.Sprintf("snapshot %q verified, no issues", snapshot))
			case op.Status == "completed":
				spin.Fail(fmt.Sprintf("snapshot %q has issues", snapshot))
			case op.Status == "cancelled":
				spin.Fail("check cancelled")
			default:
				spin.Fail("check failed")
			}
			return op, nil
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			spin.Fail("still running")
			return nil, fmt.Errorf("timed out waiting for %s; poll with 'operations status %s'", id, id)
		}

		time.Sleep(interval)
	}
}

// operationExitError maps a finished operation to the command's exit
// error so scripts can branch on the outcome.
func operationExitError(op *operationDetail) error {
	switch op.Status {
	case "completed":
		if op.clean() {
			return nil
		}
		return fmt.Errorf("verification found issues")
	case "cancelled":
		return fmt.Errorf("check cancelled")
	case "failed":
		if op.Error != "" {
			return fmt.Errorf("check failed: %s", op.Error)
		}
		return fmt.Errorf("check failed")
	default:
		return nil
	}
}
