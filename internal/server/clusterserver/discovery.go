// Package clusterserver provides node discovery using gossip.
//
// @design DS-0401
// @req RQ-0401
package clusterserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/hashicorp/memberlist"
)

// NodeMeta is the metadata a node shares through gossip.
//
// Encoded as JSON into the memberlist meta field, which caps at 512
// bytes: node attributes must stay short.
type NodeMeta struct {
	// RPCAddr is the address other nodes dial for cluster RPC.
	RPCAddr string `json:"rpc_addr"`

	// RaftAddr is the Raft communication address.
	RaftAddr string `json:"raft_addr"`

	// Attributes are free-form node attributes matched by cache-group
	// node filters.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// DiscoveryConfig configures the discovery mechanism.
type DiscoveryConfig struct {
	// NodeID is the unique node identifier.
	NodeID string

	// BindAddr is the address to bind for gossip communication.
	BindAddr string

	// BindPort is the port to bind for gossip communication.
	BindPort int

	// Meta is the metadata shared with other nodes.
	Meta NodeMeta

	// SeedNodes are the initial nodes to join.
	SeedNodes []string

	// OnJoin is invoked when a node joins, with its decoded metadata.
	// Callbacks are wired before the gossip listener starts so the
	// initial self-join event is not lost.
	OnJoin func(nodeID string, meta NodeMeta)

	// OnLeave is invoked when a node leaves.
	OnLeave func(nodeID string)

	// OnUpdate is invoked when a node's metadata changes.
	OnUpdate func(nodeID string, meta NodeMeta)

	// Logger for logging.
	Logger *slog.Logger
}

// Discovery handles node discovery and live membership using gossip.
type Discovery struct {
	config     *memberlist.Config
	memberList *memberlist.Memberlist
	logger     *slog.Logger

	mu       sync.Mutex
	shutdown bool

	// Callbacks
	onJoin   func(nodeID string, meta NodeMeta)
	onLeave  func(nodeID string)
	onUpdate func(nodeID string, meta NodeMeta)
}

// NewDiscovery creates a discovery instance, binds the gossip listener
// and joins any seed nodes.
func NewDiscovery(cfg DiscoveryConfig) (*Discovery, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	metaBytes, err := json.Marshal(cfg.Meta)
	if err != nil {
		return nil, fmt.Errorf("encode node meta: %w", err)
	}
	if len(metaBytes) > memberlist.MetaMaxSize {
		return nil, fmt.Errorf("node meta too large: %d bytes (limit %d)",
			len(metaBytes), memberlist.MetaMaxSize)
	}

	// Create memberlist configuration
	mlConfig := memberlist.DefaultLANConfig()
	mlConfig.Name = cfg.NodeID
	mlConfig.BindAddr = cfg.BindAddr
	mlConfig.BindPort = cfg.BindPort
	mlConfig.AdvertisePort = cfg.BindPort
	mlConfig.Delegate = &metadataDelegate{meta: metaBytes}

	// Disable memberlist's default logger (we use our own)
	mlConfig.LogOutput = &slogWriter{logger: cfg.Logger}

	d := &Discovery{
		config:   mlConfig,
		logger:   cfg.Logger,
		onJoin:   cfg.OnJoin,
		onLeave:  cfg.OnLeave,
		onUpdate: cfg.OnUpdate,
	}

	// Set up event delegate
	mlConfig.Events = &eventDelegate{
		discovery: d,
	}

	// Create memberlist
	ml, err := memberlist.Create(mlConfig)
	if err != nil {
		return nil, fmt.Errorf("create memberlist: %w", err)
	}

	d.memberList = ml

	// Join seed nodes if provided
	if len(cfg.SeedNodes) > 0 {
		n, err := ml.Join(cfg.SeedNodes)
		if err != nil {
			ml.Shutdown()
			return nil, fmt.Errorf("join seed nodes: %w", err)
		}
		cfg.Logger.Info("joined cluster",
			"node_id", cfg.NodeID,
			"seed_nodes", cfg.SeedNodes,
			"joined_count", n)
	} else {
		cfg.Logger.Info("started discovery (bootstrap mode)",
			"node_id", cfg.NodeID)
	}

	return d, nil
}

// Members returns the list of current members.
func (d *Discovery) Members() []*memberlist.Node {
	if d.memberList == nil {
		return nil
	}
	return d.memberList.Members()
}

// Leave gracefully leaves the cluster.
func (d *Discovery) Leave() error {
	if d.memberList == nil {
		return nil
	}

	// Broadcast leave notification
	if err := d.memberList.Leave(0); err != nil {
		d.logger.Error("failed to leave cluster", "error", err)
		return err
	}

	d.logger.Info("left cluster")
	return nil
}

// Shutdown stops the discovery mechanism.
func (d *Discovery) Shutdown() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.shutdown || d.memberList == nil {
		return nil
	}
	d.shutdown = true

	if err := d.memberList.Shutdown(); err != nil {
		return fmt.Errorf("shutdown memberlist: %w", err)
	}

	d.logger.Info("discovery shutdown complete")
	return nil
}

// LocalNode returns the local node information.
func (d *Discovery) LocalNode() *memberlist.Node {
	if d.memberList == nil {
		return nil
	}
	return d.memberList.LocalNode()
}

// decodeNodeMeta decodes a node's gossip metadata. Nodes without usable
// metadata fall back to their gossip address so they stay addressable,
// if only for error reporting.
func decodeNodeMeta(node *memberlist.Node, logger *slog.Logger) NodeMeta {
	gossipAddr := net.JoinHostPort(node.Addr.String(), fmt.Sprintf("%d", node.Port))

	if len(node.Meta) == 0 {
		logger.Warn("node has no gossip metadata, using gossip address",
			"node_id", node.Name,
			"gossip_addr", gossipAddr)
		return NodeMeta{RPCAddr: gossipAddr, RaftAddr: gossipAddr}
	}

	var meta NodeMeta
	if err := json.Unmarshal(node.Meta, &meta); err != nil {
		logger.Warn("failed to decode gossip metadata, using gossip address",
			"node_id", node.Name,
			"error", err)
		return NodeMeta{RPCAddr: gossipAddr, RaftAddr: gossipAddr}
	}

	if meta.RPCAddr == "" {
		meta.RPCAddr = gossipAddr
	}
	if meta.RaftAddr == "" {
		meta.RaftAddr = gossipAddr
	}

	return meta
}

// eventDelegate implements memberlist.EventDelegate.
type eventDelegate struct {
	discovery *Discovery
}

// NotifyJoin is called when a node joins.
func (e *eventDelegate) NotifyJoin(node *memberlist.Node) {
	meta := decodeNodeMeta(node, e.discovery.logger)

	e.discovery.logger.Info("node joined",
		"node_id", node.Name,
		"rpc_addr", meta.RPCAddr,
		"raft_addr", meta.RaftAddr)

	if e.discovery.onJoin != nil {
		e.discovery.onJoin(node.Name, meta)
	}
}

// NotifyLeave is called when a node leaves.
func (e *eventDelegate) NotifyLeave(node *memberlist.Node) {
	e.discovery.logger.Info("node left",
		"node_id", node.Name,
		"addr", node.Addr.String())

	if e.discovery.onLeave != nil {
		e.discovery.onLeave(node.Name)
	}
}

// NotifyUpdate is called when a node's metadata changes.
func (e *eventDelegate) NotifyUpdate(node *memberlist.Node) {
	meta := decodeNodeMeta(node, e.discovery.logger)

	e.discovery.logger.Debug("node updated",
		"node_id", node.Name,
		"rpc_addr", meta.RPCAddr)

	if e.discovery.onUpdate != nil {
		e.discovery.onUpdate(node.Name, meta)
	}
}

// slogWriter adapts slog.Logger to io.Writer for memberlist and raft
// internals.
type slogWriter struct {
	logger *slog.Logger
}

// Write implements io.Writer.
func (w *slogWriter) Write(p []byte) (n int, err error) {
	w.logger.Debug(string(p))
	return len(p), nil
}

// metadataDelegate provides node metadata to memberlist.
type metadataDelegate struct {
	meta []byte
}

// NodeMeta returns metadata about this node (up to 512 bytes).
func (m *metadataDelegate) NodeMeta(limit int) []byte {
	if len(m.meta) > limit {
		return m.meta[:limit]
	}
	return m.meta
}

// NotifyMsg is called when a user message is received (not used).
func (m *metadataDelegate) NotifyMsg([]byte) {}

// GetBroadcasts is called to get broadcasts to send (not used).
func (m *metadataDelegate) GetBroadcasts(overhead, limit int) [][]byte {
	return nil
}

// LocalState returns the local state for synchronization (not used).
func (m *metadataDelegate) LocalState(join bool) []byte {
	return nil
}

// MergeRemoteState merges remote state (not used).
func (m *metadataDelegate) MergeRemoteState(buf []byte, join bool) {
}
