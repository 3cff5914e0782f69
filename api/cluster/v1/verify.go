// Package clusterv1 provides the VerifyService client and handler.
//
// @design DS-0301
// @design DS-0401
package clusterv1

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	// VerifyServiceName is the fully-qualified service name.
	VerifyServiceName = "ignite.cluster.v1.VerifyService"

	// VerifyServicePathPrefix is the HTTP mount point for the service.
	VerifyServicePathPrefix = "/ignite.cluster.v1.VerifyService/"

	// VerifyServiceInspectProcedure is the path of the Inspect procedure.
	VerifyServiceInspectProcedure = "/ignite.cluster.v1.VerifyService/Inspect"

	// VerifyServiceMetaProcedure is the path of the Meta procedure.
	VerifyServiceMetaProcedure = "/ignite.cluster.v1.VerifyService/Meta"
)

// VerifyServiceHandler is the server-side contract of the VerifyService.
type VerifyServiceHandler interface {
	// Inspect runs a node-local snapshot inspection and returns the outcome.
	Inspect(ctx context.Context, req *connect.Request[InspectRequest]) (*connect.Response[InspectResponse], error)

	// Meta reports node identity and control-plane status.
	Meta(ctx context.Context, req *connect.Request[MetaRequest]) (*connect.Response[MetaResponse], error)
}

// NewVerifyServiceHandler builds an http.Handler serving the
// VerifyService with the package JSON codec. It returns the path to
// mount the handler on and the handler itself.
func NewVerifyServiceHandler(svc VerifyServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(VerifyServiceInspectProcedure, connect.NewUnaryHandler(
		VerifyServiceInspectProcedure,
		svc.Inspect,
		opts...,
	))
	mux.Handle(VerifyServiceMetaProcedure, connect.NewUnaryHandler(
		VerifyServiceMetaProcedure,
		svc.Meta,
		opts...,
	))

	return VerifyServicePathPrefix, mux
}

// VerifyServiceClient is a client for the VerifyService.
type VerifyServiceClient struct {
	inspect *connect.Client[InspectRequest, InspectResponse]
	meta    *connect.Client[MetaRequest, MetaResponse]
}

// NewVerifyServiceClient builds a VerifyService client for the node at
// baseURL (scheme://host:port), using the package JSON codec.
func NewVerifyServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *VerifyServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)

	return &VerifyServiceClient{
		inspect: connect.NewClient[InspectRequest, InspectResponse](
			httpClient,
			baseURL+VerifyServiceInspectProcedure,
			opts...,
		),
		meta: connect.NewClient[MetaRequest, MetaResponse](
			httpClient,
			baseURL+VerifyServiceMetaProcedure,
			opts...,
		),
	}
}

// Inspect calls the Inspect procedure.
func (c *VerifyServiceClient) Inspect(ctx context.Context, req *connect.Request[InspectRequest]) (*connect.Response[InspectResponse], error) {
	return c.inspect.CallUnary(ctx, req)
}

// Meta calls the Meta procedure.
func (c *VerifyServiceClient) Meta(ctx context.Context, req *connect.Request[MetaRequest]) (*connect.Response[MetaResponse], error) {
	return c.meta.CallUnary(ctx, req)
}
