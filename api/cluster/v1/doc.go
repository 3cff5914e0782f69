// Package clusterv1 defines the wire contract for Ignite cluster RPC.
//
// This package is used for internal cluster communication only: the
// VerifyService carries snapshot inspection requests from the check
// coordinator to remote nodes over Connect.
//
// The contract is hand-written. The surface is two unary procedures
// exchanging small JSON payloads, so plain structs plus a JSON codec
// keep the wire format inspectable without a schema toolchain.
//
// @design DS-0301
// @design DS-0401
package clusterv1
