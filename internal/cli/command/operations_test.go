package command

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestOperationsCommand_Structure(t *testing.T) {
	cmd := OperationsCommand()
	if cmd == nil {
		t.Fatal("OperationsCommand returned nil")
	}

	if cmd.Name != "operations" {
		t.Errorf("Name = %q, want %q", cmd.Name, "operations")
	}
	if len(cmd.Aliases) == 0 || cmd.Aliases[0] != "ops" {
		t.Error("expected alias 'ops'")
	}

	subNames := make(map[string]bool)
	for _, sub := range cmd.Subcommands {
		subNames[sub.Name] = true
	}
	for _, name := range []string{"list", "status", "cancel"} {
		if !subNames[name] {
			t.Errorf("missing subcommand: %s", name)
		}
	}
}

func TestOperationsCommand_CancelFlags(t *testing.T) {
	cmd := OperationsCommand()

	var cancelCmd *cli.Command
	for _, sub := range cmd.Subcommands {
		if sub.Name == "cancel" {
			cancelCmd = sub
			break
		}
	}
	if cancelCmd == nil {
		t.Fatal("cancel subcommand not found")
	}

	flagNames := make(map[string]bool)
	for _, flag := range cancelCmd.Flags {
		flagNames[flag.Names()[0]] = true
	}
	if !flagNames["force"] {
		t.Error("cancel should have --force flag")
	}
}

func TestOperationsList_Success(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	server.handle("/v1/operations", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			errorEnvelope(w, http.StatusMethodNotAllowed, "IG-SYS-4000", "method not allowed")
			return
		}
		jsonEnvelope(w, http.StatusOK, map[string]any{
			"items": []map[string]any{
				sampleOperation("completed", true),
				sampleOperation("running", false),
			},
			"total": 2,
		})
	})

	ctx := testContext(server, "--output", "table")
	if err := operationsList(ctx); err != nil {
		t.Errorf("operationsList() error = %v", err)
	}
}

func TestOperationsList_JSONFormat(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	server.handle("/v1/operations", func(w http.ResponseWriter, r *http.Request) {
		jsonEnvelope(w, http.StatusOK, map[string]any{
			"items": []map[string]any{sampleOperation("failed", false)},
			"total": 1,
		})
	})

	ctx := testContext(server, "--output", "json")
	if err := operationsList(ctx); err != nil {
		t.Errorf("operationsList() json error = %v", err)
	}
}

func TestOperationsList_Empty(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	server.handle("/v1/operations", func(w http.ResponseWriter, r *http.Request) {
		jsonEnvelope(w, http.StatusOK, map[string]any{
			"items": []map[string]any{},
			"total": 0,
		})
	})

	ctx := testContext(server, "--output", "table")
	if err := operationsList(ctx); err != nil {
		t.Errorf("operationsList() empty error = %v", err)
	}
}

func TestOperationsStatus_Success(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	server.handle("/v1/operations/", func(w http.ResponseWriter, r *http.Request) {
		op := sampleOperation("completed", true)
		op["report"] = "The check procedure has finished, no conflicts have been found.\n"
		jsonEnvelope(w, http.StatusOK, op)
	})

	ctx := testContext(server, "igop-01jqx0b66mr8r2e5m0vbcqnrjd")
	if err := operationsStatus(ctx); err != nil {
		t.Errorf("operationsStatus() error = %v", err)
	}
}

func TestOperationsStatus_MissingID(t *testing.T) {
	ctx := testContext(nil)
	if err := operationsStatus(ctx); err == nil {
		t.Error("operationsStatus() expected error without operation id")
	}
}

func TestOperationsStatus_NotFound(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	server.handle("/v1/operations/", func(w http.ResponseWriter, r *http.Request) {
		errorEnvelope(w, http.StatusNotFound, "IG-CHK-4040", "check operation not found")
	})

	ctx := testContext(server, "igop-missing")
	err := operationsStatus(ctx)
	if err == nil {
		t.Fatal("operationsStatus() expected error for unknown id")
	}
	if !strings.Contains(err.Error(), "IG-CHK-4040") {
		t.Errorf("error = %v, want IG-CHK-4040", err)
	}
}

func TestOperationsCancel_Force(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	server.handle("/v1/operations/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			errorEnvelope(w, http.StatusMethodNotAllowed, "IG-SYS-4000", "method not allowed")
			return
		}
		jsonEnvelope(w, http.StatusAccepted, map[string]any{
			"operation_id": "igop-01jqx0b66mr8r2e5m0vbcqnrjd",
			"cancelled":    true,
		})
	})

	ctx := makeTestContext(server, map[string]any{"force": true},
		[]string{"igop-01jqx0b66mr8r2e5m0vbcqnrjd"})
	if err := operationsCancel(ctx); err != nil {
		t.Errorf("operationsCancel() error = %v", err)
	}
}

func TestOperationsCancel_MissingID(t *testing.T) {
	ctx := testContext(nil)
	if err := operationsCancel(ctx); err == nil {
		t.Error("operationsCancel() expected error without operation id")
	}
}

func TestOperationDetail_Result(t *testing.T) {
	cleanVerdict, _ := json.Marshal(map[string]any{"clean": true})
	dirtyVerdict, _ := json.Marshal(map[string]any{"clean": false})

	tests := []struct {
		name string
		op   operationDetail
		want string
	}{
		{"clean", operationDetail{Status: "completed", Verdict: cleanVerdict}, "clean"},
		{"issues", operationDetail{Status: "completed", Verdict: dirtyVerdict}, "issues"},
		{"no verdict", operationDetail{Status: "completed"}, "issues"},
		{"running", operationDetail{Status: "running"}, "-"},
		{"cancelled", operationDetail{Status: "cancelled"}, "cancelled"},
		{"failed", operationDetail{Status: "failed"}, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.result(); got != tt.want {
				t.Errorf("result() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOperationDetail_Clean_MalformedVerdict(t *testing.T) {
	op := operationDetail{Status: "completed", Verdict: json.RawMessage("{not json")}
	if op.clean() {
		t.Error("clean() should be false for malformed verdict")
	}
}

func TestFormatMillis(t *testing.T) {
	if got := formatMillis(0); got != "-" {
		t.Errorf("formatMillis(0) = %q, want %q", got, "-")
	}
	if got := formatMillis(1700000000000); got == "-" || len(got) != len("2006-01-02 15:04:05") {
		t.Errorf("formatMillis(1700000000000) = %q, want timestamp", got)
	}
}

func TestFormatRunDuration(t *testing.T) {
	tests := []struct {
		start, end int64
		want       string
	}{
		{0, 0, "-"},
		{1000, 0, "-"},
		{1000, 2500, "1.5s"},
		{1000, 1001, "1ms"},
	}

	for _, tt := range tests {
		if got := formatRunDuration(tt.start, tt.end); got != tt.want {
			t.Errorf("formatRunDuration(%d, %d) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}
