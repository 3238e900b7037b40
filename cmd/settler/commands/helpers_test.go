package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/cmd/settler/commands/flags"
	"github.com/thoreinstein/settler/internal/cli"
	"github.com/thoreinstein/settler/internal/config"
	"github.com/thoreinstein/settler/internal/logging"
)

// captureStdout captures stdout during function execution.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	var buf bytes.Buffer
	var wg sync.WaitGroup
	wg.Go(func() {
		_, _ = io.Copy(&buf, r)
	})

	fn()

	w.Close()
	os.Stdout = oldStdout
	wg.Wait()

	return buf.String()
}

// testEnv points the commands at a private settings and backup directory.
type testEnv struct {
	cmd       *cobra.Command
	dir       string
	path      string
	backupDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv(cli.EnvAppVersion, "")

	dir := t.TempDir()
	env := &testEnv{
		dir:       filepath.Join(dir, "settings"),
		backupDir: filepath.Join(dir, "backups"),
	}
	env.path = filepath.Join(env.dir, "settings.json")

	cfg := config.Default()
	cfg.BackupDir = env.backupDir
	flags.SetConfig(cfg)
	flags.SetLocation(cli.Location{Dir: env.dir})
	t.Cleanup(func() {
		flags.SetConfig(nil)
		flags.SetLocation(cli.Location{})
	})

	env.cmd = &cobra.Command{}
	env.cmd.SetContext(logging.NewContext(context.Background(), logging.ForTest(t)))
	return env
}

func (e *testEnv) write(t *testing.T, content string) {
	t.Helper()
	if err := os.MkdirAll(e.dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(e.path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func (e *testEnv) read(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.path)
	if err != nil {
		t.Fatalf("reading settings: %v", err)
	}
	return string(data)
}
