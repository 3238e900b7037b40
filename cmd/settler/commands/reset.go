package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/cmd/settler/commands/flags"
	"github.com/thoreinstein/settler/internal/backup"
	"github.com/thoreinstein/settler/internal/cli"
	"github.com/thoreinstein/settler/internal/cli/prompt"
	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/logging"
)

var resetYes bool

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the settings with the defaults",
	Long: `Replace the settings file with the defaults for the current application
version. The previous file is backed up first.

This works even when the file cannot be migrated, so it is the way out of
an unreachable downgrade.`,
	Example: `  # Reset after confirming
  settler reset

  # Reset without asking
  settler reset --yes

  See Also: settler backup restore`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return runReset(c, os.Stdout, prompt.New())
	},
}

func runReset(c *cobra.Command, w io.Writer, p *prompt.Prompter) error {
	ctx := c.Context()

	store, err := openStore(c)
	if err != nil {
		return err
	}

	if !resetYes {
		ok, err := p.Confirm(fmt.Sprintf("Reset %s to defaults?", store.Path()))
		if err != nil && !errors.Is(err, prompt.ErrSelectionCancelled) {
			return err
		}
		if !ok {
			fmt.Fprintln(w, "Reset cancelled")
			return nil
		}
	}

	var version string
	if doc, err := store.Inspect(ctx); err == nil {
		version = doc.Version()
	}
	mgr := cli.NewBackupManager(flags.Config(), nil)
	if m, err := mgr.Backup(backup.ReasonReset, version, store.Path()); err == nil {
		fmt.Fprintf(w, "Backed up previous settings as %s\n", m.ID)
	} else if !errors.Is(err, backup.ErrNoBackupsFound) {
		logging.FromContext(ctx).Warn("could not back up settings", "error", err)
	}

	if err := store.Reset(ctx); err != nil {
		return errors.NewSystemError(err, "")
	}
	fmt.Fprintf(w, "Settings reset to defaults (version %s)\n", store.Version())
	return nil
}
