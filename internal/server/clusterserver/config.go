// Package clusterserver provides cluster server configuration.
//
// @design DS-0401
// @req RQ-0401
package clusterserver

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/bradthebeeble/ignite/internal/core/domain"
)

// Config configures a cluster server node.
type Config struct {
	// NodeID is the unique node identifier. Required.
	NodeID string

	// Attributes are free-form node attributes matched by cache-group
	// node filters, for example zone=eu.
	Attributes map[string]string

	// RaftBindAddr is the host:port for Raft traffic. Required.
	RaftBindAddr string

	// GossipBindAddr is the host to bind for gossip traffic. Required.
	GossipBindAddr string

	// GossipBindPort is the port to bind for gossip traffic.
	GossipBindPort int

	// RPCListenAddr is the host:port serving the VerifyService. Required.
	RPCListenAddr string

	// RPCAdvertiseAddr is the address other nodes dial for cluster RPC.
	// Defaults to RPCListenAddr.
	RPCAdvertiseAddr string

	// RaftDataDir is the directory for the Raft log, stable store and
	// snapshots. Required.
	RaftDataDir string

	// Bootstrap marks this node as the initial cluster member.
	Bootstrap bool

	// SeedNodes are gossip addresses of existing members to join.
	// Required unless Bootstrap is set.
	SeedNodes []string

	// Logger for cluster events. Defaults to slog.Default.
	Logger *slog.Logger
}

// Validate checks required fields and address syntax.
func (c *Config) Validate() error {
	if c.NodeID == "" {
		return fmt.Errorf("cluster: node_id is required")
	}

	if c.RaftDataDir == "" {
		return fmt.Errorf("cluster: raft data dir is required")
	}

	if _, _, err := net.SplitHostPort(c.RaftBindAddr); err != nil {
		return fmt.Errorf("cluster: invalid raft bind address %q: %w", c.RaftBindAddr, err)
	}

	if c.GossipBindAddr == "" {
		return fmt.Errorf("cluster: gossip bind address is required")
	}

	if c.GossipBindPort <= 0 || c.GossipBindPort > 65535 {
		return fmt.Errorf("cluster: invalid gossip bind port %d", c.GossipBindPort)
	}

	if _, _, err := net.SplitHostPort(c.RPCListenAddr); err != nil {
		return fmt.Errorf("cluster: invalid rpc listen address %q: %w", c.RPCListenAddr, err)
	}

	if c.RPCAdvertiseAddr != "" {
		if _, _, err := net.SplitHostPort(c.RPCAdvertiseAddr); err != nil {
			return fmt.Errorf("cluster: invalid rpc advertise address %q: %w", c.RPCAdvertiseAddr, err)
		}
	}

	if !c.Bootstrap && len(c.SeedNodes) == 0 {
		return fmt.Errorf("cluster: either bootstrap or seed nodes must be set")
	}

	return nil
}

// rpcAdvertise returns the address other nodes dial for cluster RPC.
func (c *Config) rpcAdvertise() string {
	if c.RPCAdvertiseAddr != "" {
		return c.RPCAdvertiseAddr
	}
	return c.RPCListenAddr
}

// localNode returns the domain view of this node.
func (c *Config) localNode() domain.NodeInfo {
	return domain.NodeInfo{
		ID:         domain.NodeID(c.NodeID),
		Address:    c.rpcAdvertise(),
		Attributes: c.Attributes,
	}
}
