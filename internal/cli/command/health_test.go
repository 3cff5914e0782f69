package command

import (
	"net/http"
	"strings"
	"testing"
)

func TestHealthCommand_Structure(t *testing.T) {
	cmd := HealthCommand()
	if cmd == nil {
		t.Fatal("HealthCommand returned nil")
	}
	if cmd.Name != "health" {
		t.Errorf("Name = %q, want %q", cmd.Name, "health")
	}
	if cmd.Action == nil {
		t.Error("health command should have an action")
	}
}

func TestHealth_Ready(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	server.handle("/health", func(w http.ResponseWriter, r *http.Request) {
		jsonEnvelope(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   "2026-08-23T10:00:00Z",
		})
	})
	server.handle("/ready", func(w http.ResponseWriter, r *http.Request) {
		jsonEnvelope(w, http.StatusOK, map[string]string{
			"status": "ready",
			"leader": "ignode-aaaaaaaaaaaaaaaa",
		})
	})

	ctx := testContext(server, "--output", "table")
	if err := healthAction(ctx); err != nil {
		t.Errorf("healthAction() error = %v", err)
	}
}

func TestHealth_JSONFormat(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	server.handle("/health", func(w http.ResponseWriter, r *http.Request) {
		jsonEnvelope(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	server.handle("/ready", func(w http.ResponseWriter, r *http.Request) {
		jsonEnvelope(w, http.StatusOK, map[string]string{
			"status": "ready",
			"leader": "ignode-aaaaaaaaaaaaaaaa",
		})
	})

	ctx := testContext(server, "--output", "json")
	if err := healthAction(ctx); err != nil {
		t.Errorf("healthAction() json error = %v", err)
	}
}

func TestHealth_NotReady(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	server.handle("/health", func(w http.ResponseWriter, r *http.Request) {
		jsonEnvelope(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	server.handle("/ready", func(w http.ResponseWriter, r *http.Request) {
		errorEnvelope(w, http.StatusServiceUnavailable, "IG-SYS-5030", "no raft leader elected")
	})

	ctx := testContext(server, "--output", "table")
	err := healthAction(ctx)
	if err == nil {
		t.Fatal("healthAction() expected error when not ready")
	}
	if !strings.Contains(err.Error(), "not ready") {
		t.Errorf("error = %v, want not-ready mention", err)
	}
}

func TestHealth_Unreachable(t *testing.T) {
	server := newMockServer()
	server.Close()

	ctx := testContext(server)
	err := healthAction(ctx)
	if err == nil {
		t.Fatal("healthAction() expected error for unreachable server")
	}
	if !strings.Contains(err.Error(), "unreachable") {
		t.Errorf("error = %v, want unreachable mention", err)
	}
}
