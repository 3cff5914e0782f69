// Package clusterv1 provides the Connect codec for cluster RPC.
//
// @design DS-0301
// @design DS-0401
package clusterv1

import "encoding/json"

// codecNameJSON is the codec name Connect maps to application/json.
const codecNameJSON = "json"

// JSONCodec is a connect.Codec that marshals the plain wire structs in
// this package with encoding/json.
//
// Registered on both clients and handlers by the constructors below, it
// replaces the default protobuf-backed JSON codec so the VerifyService
// can run without generated message types.
type JSONCodec struct{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return codecNameJSON }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

// Unmarshal implements connect.Codec.
func (JSONCodec) Unmarshal(data []byte, message any) error {
	// Connect delivers an empty body for empty requests.
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, message)
}
