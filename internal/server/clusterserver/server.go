// Package clusterserver provides the cluster server lifecycle.
//
// @design DS-0401
// @req RQ-0401
package clusterserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"connectrpc.com/connect"

	clusterv1 "github.com/bradthebeeble/ignite/api/cluster/v1"
	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/core/service"
)

const (
	// applyTimeout bounds Raft log application.
	applyTimeout = 10 * time.Second

	// membershipTimeout bounds Raft membership changes.
	membershipTimeout = 10 * time.Second
)

// MemberInfo describes one live cluster member.
type MemberInfo struct {
	ID         string            `json:"id"`
	RPCAddr    string            `json:"rpc_addr"`
	RaftAddr   string            `json:"raft_addr"`
	Attributes map[string]string `json:"attributes,omitempty"`
	IsLeader   bool              `json:"is_leader"`
}

// Server is the cluster plane of an Ignite node: gossip membership,
// Raft-replicated control state and the VerifyService RPC endpoint.
//
// It satisfies the check coordinator's cluster view: IsActive, Topology
// and LocalNode.
type Server struct {
	cfg       Config
	logger    *slog.Logger
	inspector *service.InspectorService

	fsm       *FSM
	raft      *RaftNode
	discovery *Discovery
	rpcSrv    *http.Server
	rpcLn     net.Listener

	mu      sync.RWMutex
	members map[string]NodeMeta // nodeID -> gossip metadata
	started bool
}

// NewServer creates a cluster server. Network listeners are not bound
// until Start.
func NewServer(cfg Config, inspector *service.InspectorService) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		cfg:       cfg,
		logger:    cfg.Logger,
		inspector: inspector,
		fsm:       NewFSM(cfg.Logger),
		members:   make(map[string]NodeMeta),
	}

	// The local node is always part of its own live view.
	s.members[cfg.NodeID] = NodeMeta{
		RPCAddr:    cfg.rpcAdvertise(),
		RaftAddr:   cfg.RaftBindAddr,
		Attributes: cfg.Attributes,
	}

	return s, nil
}

// Start binds Raft, gossip and the RPC listener.
//
// Steps:
//  1. Start the Raft node, bootstrapping if configured.
//  2. Start gossip discovery and join any seed nodes.
//  3. Serve the VerifyService on the RPC listener.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("cluster server already started")
	}
	s.started = true
	s.mu.Unlock()

	// 1. Raft
	raftNode, err := NewRaftNode(RaftConfig{
		NodeID:    s.cfg.NodeID,
		BindAddr:  s.cfg.RaftBindAddr,
		DataDir:   s.cfg.RaftDataDir,
		Bootstrap: s.cfg.Bootstrap,
		Logger:    s.logger,
	}, s.fsm)
	if err != nil {
		return fmt.Errorf("start raft: %w", err)
	}
	s.raft = raftNode

	// 2. Gossip
	discovery, err := NewDiscovery(DiscoveryConfig{
		NodeID:   s.cfg.NodeID,
		BindAddr: s.cfg.GossipBindAddr,
		BindPort: s.cfg.GossipBindPort,
		Meta: NodeMeta{
			RPCAddr:    s.cfg.rpcAdvertise(),
			RaftAddr:   s.cfg.RaftBindAddr,
			Attributes: s.cfg.Attributes,
		},
		SeedNodes: s.cfg.SeedNodes,
		OnJoin:    s.handleNodeJoin,
		OnLeave:   s.handleNodeLeave,
		OnUpdate:  s.handleNodeUpdate,
		Logger:    s.logger,
	})
	if err != nil {
		s.raft.Close()
		return fmt.Errorf("start discovery: %w", err)
	}
	s.discovery = discovery

	// 3. RPC
	ln, err := net.Listen("tcp", s.cfg.RPCListenAddr)
	if err != nil {
		s.discovery.Shutdown()
		s.raft.Close()
		return fmt.Errorf("bind rpc listener: %w", err)
	}
	s.rpcLn = ln

	handler := NewHandler(s, s.inspector, s.logger)
	path, rpcHandler := clusterv1.NewVerifyServiceHandler(handler,
		connect.WithInterceptors(DefaultInterceptors(s.logger)...))

	mux := http.NewServeMux()
	mux.Handle(path, rpcHandler)

	s.rpcSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.rpcSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("cluster rpc server failed", "error", err)
		}
	}()

	s.logger.Info("cluster server started",
		"node_id", s.cfg.NodeID,
		"raft_addr", s.cfg.RaftBindAddr,
		"gossip_port", s.cfg.GossipBindPort,
		"rpc_addr", s.cfg.RPCListenAddr,
		"bootstrap", s.cfg.Bootstrap)

	return nil
}

// Stop shuts the server down in reverse start order.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping cluster server", "node_id", s.cfg.NodeID)

	if s.rpcSrv != nil {
		if err := s.rpcSrv.Shutdown(ctx); err != nil {
			s.logger.Error("rpc server shutdown failed", "error", err)
		}
	}

	if s.discovery != nil {
		if err := s.discovery.Leave(); err != nil {
			s.logger.Error("gossip leave failed", "error", err)
		}
		if err := s.discovery.Shutdown(); err != nil {
			s.logger.Error("gossip shutdown failed", "error", err)
		}
	}

	if s.raft != nil {
		if err := s.raft.Close(); err != nil {
			s.logger.Error("raft shutdown failed", "error", err)
		}
	}

	s.logger.Info("cluster server stopped", "node_id", s.cfg.NodeID)
	return nil
}

// RPCAddr returns the bound RPC address, useful when listening on :0.
func (s *Server) RPCAddr() string {
	if s.rpcLn == nil {
		return s.cfg.RPCListenAddr
	}
	return s.rpcLn.Addr().String()
}

// ============================================================================
// Membership
// ============================================================================

// handleNodeJoin records a live member and, on the leader, promotes it
// to a Raft voter using the Raft address from its gossip metadata.
func (s *Server) handleNodeJoin(nodeID string, meta NodeMeta) {
	s.mu.Lock()
	s.members[nodeID] = meta
	s.mu.Unlock()

	if nodeID == s.cfg.NodeID {
		return
	}

	if s.raft == nil || !s.raft.IsLeader() {
		return
	}

	hasVoter, err := s.raft.HasVoter(nodeID)
	if err != nil {
		s.logger.Error("failed to read raft configuration",
			"node_id", nodeID,
			"error", err)
		return
	}
	if hasVoter {
		return
	}

	if err := s.raft.AddVoter(nodeID, meta.RaftAddr, membershipTimeout); err != nil {
		s.logger.Error("failed to add raft voter",
			"node_id", nodeID,
			"raft_addr", meta.RaftAddr,
			"error", err)
		return
	}

	s.logger.Info("raft voter added",
		"node_id", nodeID,
		"raft_addr", meta.RaftAddr)
}

// handleNodeLeave drops the member from the live view. Raft membership
// stays untouched: a flapping node keeps its vote.
func (s *Server) handleNodeLeave(nodeID string) {
	if nodeID == s.cfg.NodeID {
		return
	}

	s.mu.Lock()
	delete(s.members, nodeID)
	s.mu.Unlock()
}

// handleNodeUpdate refreshes a member's gossip metadata.
func (s *Server) handleNodeUpdate(nodeID string, meta NodeMeta) {
	s.mu.Lock()
	s.members[nodeID] = meta
	s.mu.Unlock()
}

// Members returns the live members sorted by id.
func (s *Server) Members() []MemberInfo {
	leaderID, _ := s.Leader()

	s.mu.RLock()
	out := make([]MemberInfo, 0, len(s.members))
	for id, meta := range s.members {
		out = append(out, MemberInfo{
			ID:         id,
			RPCAddr:    meta.RPCAddr,
			RaftAddr:   meta.RaftAddr,
			Attributes: meta.Attributes,
			IsLeader:   id == leaderID,
		})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MemberCount returns the number of live members.
func (s *Server) MemberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

// ============================================================================
// Cluster view (consumed by the check coordinator)
// ============================================================================

// IsActive reports whether the replicated ACTIVE flag is set.
func (s *Server) IsActive() bool {
	return s.fsm.Active()
}

// LocalNode returns the domain view of this node.
func (s *Server) LocalNode() domain.NodeInfo {
	return s.cfg.localNode()
}

// Topology returns the live membership as seen through gossip, stamped
// with the replicated baseline epoch.
func (s *Server) Topology() domain.Topology {
	state := s.fsm.State()

	s.mu.RLock()
	nodes := make([]domain.NodeInfo, 0, len(s.members))
	for id, meta := range s.members {
		nodes = append(nodes, domain.NodeInfo{
			ID:         domain.NodeID(id),
			Address:    meta.RPCAddr,
			Attributes: meta.Attributes,
		})
	}
	s.mu.RUnlock()

	return domain.NewTopology(state.BaselineEpoch, nodes)
}

// ============================================================================
// Control-plane operations
// ============================================================================

// IsLeader returns true if this node is the Raft leader.
func (s *Server) IsLeader() bool {
	if s.raft == nil {
		return false
	}
	return s.raft.IsLeader()
}

// Leader returns the current leader id and Raft address.
func (s *Server) Leader() (id, addr string) {
	if s.raft == nil {
		return "", ""
	}
	return s.raft.LeaderID(), s.raft.LeaderAddr()
}

// State returns a copy of the replicated cluster state.
func (s *Server) State() *ClusterState {
	return s.fsm.State()
}

// Activate sets the replicated ACTIVE flag. Leader only.
func (s *Server) Activate(ctx context.Context) error {
	return s.apply(ctx, LogEntry{Type: LogEntryClusterActivate})
}

// Deactivate clears the replicated ACTIVE flag. Leader only.
func (s *Server) Deactivate(ctx context.Context) error {
	return s.apply(ctx, LogEntry{Type: LogEntryClusterDeactivate})
}

// SetBaseline replaces the baseline topology with an epoch one above
// the current state. Leader only.
func (s *Server) SetBaseline(ctx context.Context, nodes []domain.NodeInfo) error {
	state := s.fsm.State()

	payload, err := json.Marshal(BaselineSetPayload{
		Epoch: state.BaselineEpoch + 1,
		Nodes: nodes,
	})
	if err != nil {
		return fmt.Errorf("encode baseline payload: %w", err)
	}

	return s.apply(ctx, LogEntry{Type: LogEntryBaselineSet, Payload: payload})
}

// RegisterGroup adds a cache-group descriptor to the registry. Leader only.
func (s *Server) RegisterGroup(ctx context.Context, g domain.GroupDescriptor) error {
	if err := g.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(GroupRegisterPayload{Group: g})
	if err != nil {
		return fmt.Errorf("encode group payload: %w", err)
	}

	return s.apply(ctx, LogEntry{Type: LogEntryGroupRegister, Payload: payload})
}

// apply marshals and commits one log entry through Raft.
func (s *Server) apply(ctx context.Context, entry LogEntry) error {
	if s.raft == nil {
		return domain.ErrServiceUnavailable.WithDetails("cluster server not started")
	}
	if !s.raft.IsLeader() {
		leaderID, leaderAddr := s.Leader()
		return domain.ErrNotLeader.WithDetails(
			fmt.Sprintf("leader is %s (%s)", leaderID, leaderAddr))
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode log entry: %w", err)
	}

	timeout := applyTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	return s.raft.Apply(data, timeout)
}
