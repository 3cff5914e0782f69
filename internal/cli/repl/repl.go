// Package repl provides the interactive REPL mode for ignite-cli.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	completer *Completer
	history   *History
	execute   func(args []string) error
}

// New creates a REPL that hands each entered line, split into fields, to
// the given executor.
func New(execute func(args []string) error) *REPL {
	return &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		completer: NewCompleter(),
		history:   NewHistory(),
		execute:   execute,
	}
}

// Run starts the REPL loop. It returns on EOF or an explicit exit.
func (r *REPL) Run() error {
	// History is best effort; a broken file never blocks the shell.
	_ = r.history.Load()
	defer func() { _ = r.history.Save() }()

	reader := bufio.NewReader(r.input)

	for {
		// Print prompt
		fmt.Fprint(r.output, "ignite> ")

		// Read line
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil {
			return err
		}

		// Trim and skip empty lines
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Add to history
		r.history.Add(line)

		// Handle special commands
		if line == "exit" || line == "quit" {
			return nil
		}

		// Execute command
		if err := r.dispatch(line); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
	}
}

// dispatch splits the line on whitespace and runs it through the
// executor. Quoting is not supported; arguments cannot contain spaces.
func (r *REPL) dispatch(line string) error {
	if r.execute == nil {
		return fmt.Errorf("no command executor configured")
	}
	return r.execute(strings.Fields(line))
}
