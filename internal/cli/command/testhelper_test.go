package command

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/bradthebeeble/ignite/internal/cli/config"
	"github.com/bradthebeeble/ignite/internal/cli/connection"
)

// mockServer creates a test HTTP server with custom handlers.
type mockServer struct {
	*httptest.Server
	handlers map[string]http.HandlerFunc
}

// newMockServer creates a new mock server.
func newMockServer() *mockServer {
	m := &mockServer{
		handlers: make(map[string]http.HandlerFunc),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Find handler by path prefix match
		for pattern, handler := range m.handlers {
			if strings.HasPrefix(r.URL.Path, pattern) {
				handler(w, r)
				return
			}
		}
		http.NotFound(w, r)
	}))
	return m
}

// handle registers a handler for a path pattern.
func (m *mockServer) handle(pattern string, handler http.HandlerFunc) {
	m.handlers[pattern] = handler
}

// jsonEnvelope writes a success envelope the way the management API does.
func jsonEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    data,
	})
}

// errorEnvelope writes a failure envelope with a coded error.
func errorEnvelope(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   map[string]string{"code": code, "message": message},
	})
}

// testContext creates a CLI context for testing with the mock server.
func testContext(server *mockServer, args ...string) *cli.Context {
	return makeTestContext(server, nil, args)
}

// Sample response payloads, shaped like the management API's data field.

func sampleVerdict(clean bool) map[string]any {
	v := map[string]any{
		"snapshot_name": "daily",
		"nodes":         3,
		"clean":         clean,
	}
	if !clean {
		v["conflicts"] = []map[string]any{{
			"key": map[string]any{"group_id": 1544803905, "partition_id": 2},
			"counters": []map[string]any{
				{"node_id": "ignode-aaaaaaaaaaaaaaaa", "update_counter": 10},
				{"node_id": "ignode-bbbbbbbbbbbbbbbb", "update_counter": 12},
			},
		}}
	}
	return v
}

func sampleOperation(status string, clean bool) map[string]any {
	started := time.Now().Add(-2 * time.Minute).UnixMilli()
	op := map[string]any{
		"id":         "igop-01jqx0b66mr8r2e5m0vbcqnrjd",
		"snapshot":   "daily",
		"status":     status,
		"started_at": started,
	}
	switch status {
	case "completed":
		op["finished_at"] = started + 90_000
		op["verdict"] = sampleVerdict(clean)
	case "cancelled":
		op["finished_at"] = started + 5_000
		op["error"] = "operation cancelled"
		op["error_code"] = "IG-CHK-4990"
	case "failed":
		op["finished_at"] = started + 1_000
		op["error"] = "cluster is not active"
		op["error_code"] = "IG-CLUS-4003"
	}
	return op
}

func sampleSnapshotSummary() map[string]any {
	return map[string]any{
		"name":          "daily",
		"id":            "4b825dc6-42f1-4f5e-9f5f-0a1b2c3d4e5f",
		"created_at":    time.Now().Add(-6 * time.Hour).UnixMilli(),
		"cluster_epoch": 3,
		"nodes":         3,
		"groups":        2,
	}
}

// makeTestContext creates a CLI context with specific flags for testing
// actions. extraFlags maps non-global flag names to their default values.
// A nil server leaves the --server flag at its default.
func makeTestContext(server *mockServer, extraFlags map[string]any, args []string) *cli.Context {
	app := &cli.App{
		Name:  "test",
		Flags: globalFlags(),
		Metadata: map[string]any{
			"connMgr": connection.NewManager(config.Default()),
		},
	}

	// Build all flags - start with global flags
	allFlags := []cli.Flag{}
	allFlags = append(allFlags, globalFlags()...)

	// Track existing flag names to avoid duplicates
	existingFlags := make(map[string]bool)
	for _, f := range allFlags {
		for _, name := range f.Names() {
			existingFlags[name] = true
		}
	}

	// Add extra flags that don't exist yet
	for name, val := range extraFlags {
		if existingFlags[name] {
			continue // Skip if flag already exists
		}
		switch v := val.(type) {
		case string:
			allFlags = append(allFlags, &cli.StringFlag{Name: name, Value: v})
		case int:
			allFlags = append(allFlags, &cli.IntFlag{Name: name, Value: v})
		case bool:
			allFlags = append(allFlags, &cli.BoolFlag{Name: name, Value: v})
		case time.Duration:
			allFlags = append(allFlags, &cli.DurationFlag{Name: name, Value: v})
		case []string:
			allFlags = append(allFlags, &cli.StringSliceFlag{Name: name})
		}
		existingFlags[name] = true
	}

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range allFlags {
		f.Apply(set)
	}

	// Build args
	var cliArgs []string
	if server != nil {
		cliArgs = append(cliArgs, "--server", server.URL)
	}
	for name, val := range extraFlags {
		switch v := val.(type) {
		case string:
			if v != "" {
				cliArgs = append(cliArgs, "--"+name, v)
			}
		case int:
			if v != 0 {
				cliArgs = append(cliArgs, "--"+name, fmt.Sprintf("%d", v))
			}
		case bool:
			if v {
				cliArgs = append(cliArgs, "--"+name)
			}
		case time.Duration:
			if v != 0 {
				cliArgs = append(cliArgs, "--"+name, v.String())
			}
		case []string:
			for _, s := range v {
				cliArgs = append(cliArgs, "--"+name, s)
			}
		}
	}
	cliArgs = append(cliArgs, args...)

	set.Parse(cliArgs)

	return cli.NewContext(app, set, nil)
}
