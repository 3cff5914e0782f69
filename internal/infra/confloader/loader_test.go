package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Cluster struct {
		RaftBind   string `koanf:"raft_bind"`
		GossipPort int    `koanf:"gossip_port"`
	} `koanf:"cluster"`
	HTTP struct {
		Listen    string `koanf:"listen"`
		AuthToken string `koanf:"auth_token"`
	} `koanf:"http"`
	Check struct {
		NodeTimeout string `koanf:"node_timeout"`
	} `koanf:"check"`
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/config.yaml"),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.filePath != "/path/to/config.yaml" {
		t.Errorf("filePath = %q, want %q", l.filePath, "/path/to/config.yaml")
	}
}

func TestLoader_LoadFile(t *testing.T) {
	// Create temp config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
cluster:
  raft_bind: "0.0.0.0:7600"
  gossip_port: 7946
http:
  listen: "0.0.0.0:7700"
check:
  node_timeout: "5m"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	l := NewLoader()
	if err := l.LoadFile(configPath); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	// Verify values were loaded
	if addr := l.GetString("cluster.raft_bind"); addr != "0.0.0.0:7600" {
		t.Errorf("cluster.raft_bind = %q, want %q", addr, "0.0.0.0:7600")
	}

	if port := l.GetInt("cluster.gossip_port"); port != 7946 {
		t.Errorf("cluster.gossip_port = %d, want 7946", port)
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	err := l.LoadFile("/nonexistent/config.yaml")
	if err == nil {
		t.Error("LoadFile() should return error for nonexistent file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	l := NewLoader()
	// Empty path should not error
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") should not error, got: %v", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	// Set environment variables
	t.Setenv("IGNITE_CLUSTER__RAFT_BIND", "127.0.0.1:7600")
	t.Setenv("IGNITE_HTTP__LISTEN", "127.0.0.1:7700")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	// Section separator is the double underscore; single underscores stay
	// part of the key name.
	if addr := l.GetString("cluster.raft_bind"); addr != "127.0.0.1:7600" {
		t.Errorf("cluster.raft_bind = %q, want %q", addr, "127.0.0.1:7600")
	}
	if addr := l.GetString("http.listen"); addr != "127.0.0.1:7700" {
		t.Errorf("http.listen = %q, want %q", addr, "127.0.0.1:7700")
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_HTTP__LISTEN", "127.0.0.1:9090")

	l := NewLoader(WithEnvPrefix("MYAPP_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if addr := l.GetString("http.listen"); addr != "127.0.0.1:9090" {
		t.Errorf("http.listen = %q, want %q", addr, "127.0.0.1:9090")
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()

	data := map[string]any{
		"http.listen": "localhost:3000",
		"debug":       true,
	}

	if err := l.LoadMap(data); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if addr := l.GetString("http.listen"); addr != "localhost:3000" {
		t.Errorf("http.listen = %q, want %q", addr, "localhost:3000")
	}

	if !l.GetBool("debug") {
		t.Error("debug should be true")
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	// Create temp config file with low priority value
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
http:
  listen: "from-file:7700"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Set environment variable with high priority value
	t.Setenv("IGNITE_HTTP__LISTEN", "from-env:7700")

	l := NewLoader(WithConfigFile(configPath))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Environment should override file
	if cfg.HTTP.Listen != "from-env:7700" {
		t.Errorf("Listen = %q, want %q (env should override file)",
			cfg.HTTP.Listen, "from-env:7700")
	}
}

func TestLoader_Unmarshal(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
cluster:
  raft_bind: "0.0.0.0:7600"
  gossip_port: 7946
http:
  listen: "0.0.0.0:7700"
  auth_token: "igat_testtoken123"
check:
  node_timeout: "5m"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	l := NewLoader(WithConfigFile(configPath))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Cluster.RaftBind != "0.0.0.0:7600" {
		t.Errorf("RaftBind = %q, want %q", cfg.Cluster.RaftBind, "0.0.0.0:7600")
	}
	if cfg.Cluster.GossipPort != 7946 {
		t.Errorf("GossipPort = %d, want 7946", cfg.Cluster.GossipPort)
	}
	if cfg.HTTP.AuthToken != "igat_testtoken123" {
		t.Errorf("AuthToken = %q, want %q", cfg.HTTP.AuthToken, "igat_testtoken123")
	}
	if cfg.Check.NodeTimeout != "5m" {
		t.Errorf("NodeTimeout = %q, want %q", cfg.Check.NodeTimeout, "5m")
	}
}

func TestLoader_IsLoaded(t *testing.T) {
	l := NewLoader()

	if l.IsLoaded() {
		t.Error("IsLoaded() should be false before Load()")
	}

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}
}

func TestLoader_All(t *testing.T) {
	l := NewLoader()
	l.LoadMap(map[string]any{
		"key1": "value1",
		"key2": "value2",
	})

	all := l.All()
	if len(all) < 2 {
		t.Errorf("All() returned %d keys, want at least 2", len(all))
	}
}

func TestLoader_Keys(t *testing.T) {
	l := NewLoader()
	l.LoadMap(map[string]any{
		"key1": "value1",
		"key2": "value2",
	})

	keys := l.Keys()
	if len(keys) < 2 {
		t.Errorf("Keys() returned %d keys, want at least 2", len(keys))
	}
}

func TestLoader_GetInt(t *testing.T) {
	l := NewLoader()
	l.LoadMap(map[string]any{
		"port": 8080,
	})

	if port := l.GetInt("port"); port != 8080 {
		t.Errorf("GetInt(port) = %d, want %d", port, 8080)
	}
}
