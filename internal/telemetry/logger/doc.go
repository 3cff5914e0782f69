// Package logger provides structured logging for Ignite.
//
// This package configures the standard library log/slog:
//
//   - logger.go: handler construction and runtime level control
//   - context.go: context-aware logging with request/trace IDs
//   - redact.go: sensitive data redaction
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering with runtime adjustment (SIGHUP)
//   - Automatic sensitive data masking
//   - Context propagation for request tracing
//
// @req RQ-0403
// @design DS-0402
package logger
