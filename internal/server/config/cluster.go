// Package config defines the server configuration structure.
//
// @req RQ-0502
// @design DS-0502
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/bradthebeeble/ignite/internal/server/clusterserver"
)

// EnsureNodeName populates node.name with a generated name when empty.
//
// Called before Verify so hand-written configs may omit the name.
func EnsureNodeName(cfg *ServerConfig, logger *slog.Logger) error {
	if cfg.Node.Name != "" {
		return nil
	}
	generated, err := generateNodeName()
	if err != nil {
		return fmt.Errorf("generate node name: %w", err)
	}
	cfg.Node.Name = generated
	logger.Info("generated node name", "node", generated)
	return nil
}

// ToClusterConfig converts ServerConfig to clusterserver.Config.
func ToClusterConfig(cfg *ServerConfig, logger *slog.Logger) (clusterserver.Config, error) {
	if cfg == nil {
		return clusterserver.Config{}, fmt.Errorf("server config is nil")
	}

	return clusterserver.Config{
		NodeID:           cfg.Node.Name,
		Attributes:       cfg.Node.Attributes,
		RaftBindAddr:     cfg.Cluster.RaftBind,
		GossipBindAddr:   cfg.Cluster.GossipBind,
		GossipBindPort:   cfg.Cluster.GossipPort,
		RPCListenAddr:    cfg.Cluster.RPCListen,
		RPCAdvertiseAddr: cfg.Cluster.RPCAdvertise,
		RaftDataDir:      cfg.Cluster.RaftDir,
		Bootstrap:        cfg.Cluster.Bootstrap,
		SeedNodes:        cfg.Cluster.Seeds,
		Logger:           logger,
	}, nil
}

// generateNodeName generates a unique node name.
//
// Format: ignode-<16 hex chars> (e.g., "ignode-a1b2c3d4e5f67890")
func generateNodeName() (string, error) {
	buf := make([]byte, 8) // 8 bytes = 16 hex chars
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return "ignode-" + hex.EncodeToString(buf), nil
}
