// Package editor launches the user's preferred text editor on a file.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/settler/internal/errors"
)

// EnvEditor overrides $EDITOR and $VISUAL for settler only.
const EnvEditor = "SETTLER_EDITOR"

// Streams are the terminal the editor runs on.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams connects the editor to the process's terminal.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Open runs the editor on path and waits for it to exit. The editor value
// may carry arguments, as in EDITOR="code --wait".
func Open(ctx context.Context, path string, s Streams) error {
	args := strings.Fields(detectEditor())
	if len(args) == 0 {
		return errors.New("no editor configured")
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = s.In
	cmd.Stdout = s.Out
	cmd.Stderr = s.Err

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", args[0])
	}
	return nil
}

// detectEditor returns the editor command line. Fallback chain:
// $SETTLER_EDITOR, $EDITOR, $VISUAL, nano, vi.
func detectEditor() string {
	for _, env := range []string{EnvEditor, "EDITOR", "VISUAL"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}

	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}
	return "vi"
}
