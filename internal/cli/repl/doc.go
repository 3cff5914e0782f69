// Package repl provides interactive mode for the Ignite CLI.
//
// This package implements the Read-Eval-Print Loop for interactive sessions:
//
//   - repl.go: Main REPL loop and command dispatch
//   - completer.go: Command completion suggestions
//   - history.go: Command history persistence
//
// Each entered line runs as a fresh CLI invocation that shares the
// session's pinned connection, so 'connect prod' followed by
// 'check daily' talks to prod without repeating flags.
//
// @design DS-0602
package repl
