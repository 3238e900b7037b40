// Package main is the entry point for the settler CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/thoreinstein/settler/cmd/settler/commands"
	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/logging"
)

func main() {
	slog.SetDefault(logging.Default())

	err := commands.Execute()
	if err == nil {
		return
	}

	msg := err.Error()
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		msg = exitErr.Error()
	}
	fmt.Fprintln(os.Stderr, "Error:", msg)
	if s := errors.Suggestion(err); s != "" {
		fmt.Fprintln(os.Stderr, s)
	}
	os.Exit(errors.ExitCode(err))
}
