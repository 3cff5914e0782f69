// Package command provides CLI command definitions for ignite-cli.
package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/bradthebeeble/ignite/internal/cli/connection"
	"github.com/bradthebeeble/ignite/internal/cli/output"
)

// OperationsCommand returns the operations subcommand group.
func OperationsCommand() *cli.Command {
	return &cli.Command{
		Name:    "operations",
		Aliases: []string{"ops"},
		Usage:   "Manage check operations",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List check operations, most recent first",
				Action: operationsList,
			},
			{
				Name:      "status",
				Usage:     "Show one operation with its verdict and report",
				ArgsUsage: "OPERATION_ID",
				Action:    operationsStatus,
			},
			{
				Name:      "cancel",
				Usage:     "Cancel a running operation",
				ArgsUsage: "OPERATION_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: operationsCancel,
			},
		},
	}
}

// operationDetail mirrors the API's operation shape. The verdict stays
// raw so json/yaml output round-trips it untouched.
type operationDetail struct {
	ID         string          `json:"id"`
	Snapshot   string          `json:"snapshot"`
	Status     string          `json:"status"`
	StartedAt  int64           `json:"started_at"`
	FinishedAt int64           `json:"finished_at,omitempty"`
	Error      string          `json:"error,omitempty"`
	ErrorCode  string          `json:"error_code,omitempty"`
	Verdict    json.RawMessage `json:"verdict,omitempty"`
	Report     string          `json:"report,omitempty"`
}

// clean reports whether the operation finished with a clean verdict.
func (op *operationDetail) clean() bool {
	if len(op.Verdict) == 0 {
		return false
	}
	var v struct {
		Clean bool `json:"clean"`
	}
	if err := json.Unmarshal(op.Verdict, &v); err != nil {
		return false
	}
	return v.Clean
}

// result renders the single-word outcome column.
func (op *operationDetail) result() string {
	switch op.Status {
	case "completed":
		if op.clean() {
			return "clean"
		}
		return "issues"
	case "running":
		return "-"
	default:
		return op.Status
	}
}

// operationRow is the table projection of one operation.
type operationRow struct {
	ID        string `json:"id"`
	Snapshot  string `json:"snapshot"`
	Status    string `json:"status"`
	Result    string `json:"result"`
	Started   string `json:"started"`
	Duration  string `json:"duration"`
	ErrorCode string `json:"error_code" table:"wide"`
}

func operationsList(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, "/v1/operations")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		Items []operationDetail `json:"items"`
		Total int               `json:"total"`
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
		rows := make([]operationRow, 0, len(result.Items))
		for _, op := range result.Items {
			rows = append(rows, operationRow{
				ID:        op.ID,
				Snapshot:  op.Snapshot,
				Status:    op.Status,
				Result:    op.result(),
				Started:   formatMillis(op.StartedAt),
				Duration:  formatRunDuration(op.StartedAt, op.FinishedAt),
				ErrorCode: op.ErrorCode,
			})
		}
		formatter := &output.TableFormatter{Wide: flags.Wide}
		if err := formatter.Format(os.Stdout, rows); err != nil {
			return err
		}
		fmt.Printf("\nTotal: %d operations\n", result.Total)
		return nil
	}
}

func operationsStatus(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("operation ID required")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	op, err := fetchOperation(client, id)
	if err != nil {
		return err
	}

	return renderOperation(ParseGlobalFlags(c), op)
}

func operationsCancel(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("operation ID required")
	}

	if !c.Bool("force") {
		fmt.Printf("Are you sure you want to cancel operation '%s'? [y/N]: ", id)
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

	resp, err := client.Delete(ctx, "/v1/operations/"+id)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		OperationID string `json:"operation_id"`
		Cancelled   bool   `json:"cancelled"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	fmt.Printf("Operation %s cancellation requested.\n", result.OperationID)
	return nil
}

// fetchOperation reads one operation from the API.
func fetchOperation(client *connection.Client, id string) (*operationDetail, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, "/v1/operations/"+id)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	var op operationDetail
	if err := connection.ParseResponse(resp, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// renderOperation writes one operation in the selected format. The
// table form prints the server-rendered report text.
func renderOperation(flags *GlobalFlags, op *operationDetail) error {
	switch output.Format(flags.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
		return formatter.Format(os.Stdout, op)
	default:
		fmt.Printf("Operation: %s\n", op.ID)
		fmt.Printf("Snapshot:  %s\n", op.Snapshot)
		fmt.Printf("Status:    %s\n", op.Status)
		fmt.Printf("Started:   %s\n", formatMillis(op.StartedAt))
		if op.FinishedAt > 0 {
			fmt.Printf("Finished:  %s\n", formatMillis(op.FinishedAt))
			fmt.Printf("Duration:  %s\n", formatRunDuration(op.StartedAt, op.FinishedAt))
		}
		if op.Error != "" {
			if op.ErrorCode != "" {
				fmt.Printf("Error:     [%s] %s\n", op.ErrorCode, op.Error)
			} else {
				fmt.Printf("Error:     %s\n", op.Error)
			}
		}
		if op.Report != "" {
			fmt.Printf("\n%s", op.Report)
		}
		return nil
	}
}

// formatMillis renders a unix-millisecond timestamp, "-" when unset.
func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04:05")
}

// formatRunDuration renders the elapsed time of a finished run.
func formatRunDuration(startMs, endMs int64) string {
	if startMs == 0 || endMs == 0 {
		return "-"
	}
	return (time.Duration(endMs-startMs) * time.Millisecond).Round(time.Millisecond).String()
}
