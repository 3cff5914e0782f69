// Package shutdown provides graceful shutdown for Ignite.
//
// This package handles process signals:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - Timeout-based forced shutdown
//   - Cleanup callback registration
//   - SIGHUP reload callbacks (log level, config re-read)
//
// Usage:
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown(server.Stop)
//	err := h.Wait()
//
// @design DS-0501
package shutdown
