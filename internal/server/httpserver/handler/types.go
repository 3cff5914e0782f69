// Package handler provides HTTP request handlers for the Ignite management API.
package handler

import (
	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/server/clusterserver"
	"github.com/bradthebeeble/ignite/internal/storage/snapshot"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses
// Prometheus exposition format).
//
// @design DS-0302 Section 2.1
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the error half of the envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewResponse creates a success response.
func NewResponse(data any) *Response {
	return &Response{Success: true, Data: data}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(code, message string) *Response {
	return &Response{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message},
	}
}

// CheckStartedResponse is the response body for POST /v1/snapshots/{name}/check.
//
// @design DS-0301
type CheckStartedResponse struct {
	OperationID string `json:"operation_id"`
	Snapshot    string `json:"snapshot"`
	Status      string `json:"status"`
}

// OperationResponse describes one check operation in API responses.
// Report carries the rendered text form of the verdict and is only
// populated on single-operation reads.
//
// @design DS-0301
type OperationResponse struct {
	ID         string            `json:"id"`
	Snapshot   string            `json:"snapshot"`
	Status     string            `json:"status"`
	StartedAt  int64             `json:"started_at"`
	FinishedAt int64             `json:"finished_at,omitempty"`
	Error      string            `json:"error,omitempty"`
	ErrorCode  string            `json:"error_code,omitempty"`
	Verdict    *snapshot.Verdict `json:"verdict,omitempty"`
	Report     string            `json:"report,omitempty"`
}

// CancelOperationResponse is the response body for DELETE /v1/operations/{id}.
//
// @design DS-0301
type CancelOperationResponse struct {
	OperationID string `json:"operation_id"`
	Cancelled   bool   `json:"cancelled"`
}

// OperationListResponse is the response body for GET /v1/operations.
//
// @design DS-0301
type OperationListResponse struct {
	Items []OperationResponse `json:"items"`
	Total int                 `json:"total"`
}

// SnapshotSummary is one registry entry in list responses.
//
// @design DS-0301
type SnapshotSummary struct {
	Name         string `json:"name"`
	ID           string `json:"id"`
	CreatedAt    int64  `json:"created_at"`
	ClusterEpoch uint64 `json:"cluster_epoch"`
	Nodes        int    `json:"nodes"`
	Groups       int    `json:"groups"`
}

// SnapshotListResponse is the response body for GET /v1/snapshots.
//
// @design DS-0301
type SnapshotListResponse struct {
	Items []SnapshotSummary `json:"items"`
	Total int               `json:"total"`
}

// ClusterInfoResponse is the response body for GET /v1/cluster.
//
// @design DS-0301
type ClusterInfoResponse struct {
	Active        bool                       `json:"active"`
	LeaderID      string                     `json:"leader_id,omitempty"`
	LeaderAddr    string                     `json:"leader_addr,omitempty"`
	BaselineEpoch uint64                     `json:"baseline_epoch"`
	Members       []clusterserver.MemberInfo `json:"members"`
	Baseline      []domain.NodeInfo          `json:"baseline,omitempty"`
	Groups        []domain.GroupDescriptor   `json:"groups,omitempty"`
}

// ActivationResponse is the response body for POST /v1/cluster/activate
// and POST /v1/cluster/deactivate.
//
// @design DS-0301
type ActivationResponse struct {
	Active bool `json:"active"`
}

// BaselineResponse is the response body for POST /v1/cluster/baseline.
//
// @design DS-0301
type BaselineResponse struct {
	BaselineEpoch uint64 `json:"baseline_epoch"`
	Nodes         int    `json:"nodes"`
}
