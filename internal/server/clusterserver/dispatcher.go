// Package clusterserver provides the remote inspection dispatcher.
//
// @design DS-0401
// @req RQ-0401
package clusterserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/connect"

	clusterv1 "github.com/bradthebeeble/ignite/api/cluster/v1"
	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/storage/snapshot"
)

// ConnectDispatcher sends inspection requests to remote nodes over the
// VerifyService RPC.
//
// Clients are cached per target address. Deadlines come from the
// caller's context; the check coordinator sets a per-node timeout.
type ConnectDispatcher struct {
	httpClient connect.HTTPClient
	logger     *slog.Logger

	mu      sync.Mutex
	clients map[string]*clusterv1.VerifyServiceClient
}

// NewConnectDispatcher creates a dispatcher. A nil httpClient falls
// back to a pooled client without its own timeout.
func NewConnectDispatcher(httpClient connect.HTTPClient, logger *slog.Logger) *ConnectDispatcher {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        64,
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ConnectDispatcher{
		httpClient: httpClient,
		logger:     logger,
		clients:    make(map[string]*clusterv1.VerifyServiceClient),
	}
}

// Dispatch implements the coordinator's dispatcher contract: run one
// inspection on the target node and return its outcome.
func (d *ConnectDispatcher) Dispatch(
	ctx context.Context,
	node domain.NodeInfo,
	req snapshot.InspectRequest,
) (*snapshot.NodeOutcome, error) {
	if node.Address == "" {
		return nil, fmt.Errorf("node %s has no rpc address", node.ID)
	}

	client := d.client(node.Address)

	d.logger.Debug("dispatching inspection",
		"operation_id", req.OperationID,
		"snapshot", req.SnapshotName,
		"node_id", node.ID,
		"addr", node.Address)

	resp, err := client.Inspect(ctx, connect.NewRequest(inspectRequestToWire(req)))
	if err != nil {
		return nil, fmt.Errorf("inspect on %s: %w", node.ID, err)
	}

	outcome := outcomeFromWire(resp.Msg.Outcome)
	if outcome == nil {
		return nil, fmt.Errorf("inspect on %s: empty response", node.ID)
	}

	return outcome, nil
}

// client returns the cached client for addr, creating it on first use.
func (d *ConnectDispatcher) client(addr string) *clusterv1.VerifyServiceClient {
	d.mu.Lock()
	defer d.mu.Unlock()

	if c, ok := d.clients[addr]; ok {
		return c
	}

	c := clusterv1.NewVerifyServiceClient(d.httpClient, "http://"+addr,
		connect.WithInterceptors(NewRequestIDInterceptor()))
	d.clients[addr] = c

	return c
}
