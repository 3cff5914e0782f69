// Package connection provides connection management for the Ignite CLI.
//
// This package manages connections to Ignite servers:
//
//   - manager.go: Profile resolution and active-connection state
//   - http.go: HTTP/HTTPS client and response envelope parsing
//   - socket.go: HTTP over the server's local unix socket
//
// Both transports expose the same Client type, so commands never care
// whether they reach the server over TCP or the local socket. TCP
// connections authenticate with a bearer token; socket access is gated
// by file permissions and sends no credentials.
//
// @design DS-0602
package connection
