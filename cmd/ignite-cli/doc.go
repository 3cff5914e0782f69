// Package main provides the entry point for ignite-cli.
//
// The CLI tool provides command-line access to an Ignite server for:
//
//   - Snapshot verification (start checks, follow progress, read verdicts)
//   - Check operation management (list, status, cancel)
//   - Snapshot inspection (list, show descriptors)
//   - Cluster administration (info, activate, deactivate, baseline)
//   - Connection profiles and configuration management
//
// Usage:
//
//	ignite-cli [command] [flags]
//	ignite-cli check daily-0412 --detach
//	ignite-cli operations list --output json
//	ignite-cli connect prod
//
// The CLI supports both single-command mode and interactive REPL mode.
//
// @design DS-0601
package main
