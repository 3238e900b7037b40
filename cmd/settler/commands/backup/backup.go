// Package backup provides CLI commands for managing settings backups.
package backup

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/cmd/settler/commands/flags"
	"github.com/thoreinstein/settler/internal/backup"
	"github.com/thoreinstein/settler/internal/cli"
	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/logging"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
)

// Cmd is the root backup command.
var Cmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage settings backups",
	Long: `Manage snapshots of the settings file.

settler snapshots the settings file before a migration or a reset
overwrites it. This command group lists, restores, creates and prunes those
snapshots. Each snapshot records a SHA-256 hash of every file, and a restore
refuses to write anything if a hash does not match.

Backups are stored in the backup directory from the config
(default: ~/.local/share/settler/backups).`,
	Example: `  # List all backups
  settler backup list

  # Restore a backup, choosing from a list
  settler backup restore

  # Restore a specific backup
  settler backup restore 20260123T100712.000000000

  # Create a manual backup
  settler backup create

  # Remove old backups, keeping the 3 most recent
  settler backup prune --keep 3

  See Also:
    settler backup list    - List available backups
    settler backup restore - Restore from a backup
    settler backup create  - Manually create a backup
    settler backup prune   - Remove old backups`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// manager returns the backup manager configured for this invocation.
func manager() *backup.Manager {
	return cli.NewBackupManager(flags.Config(), nil)
}

// settingsFile returns the settings path and the version of the document
// stored there, "" when it cannot be read.
func settingsFile(ctx context.Context) (string, string, error) {
	store, err := cli.OpenStore(flags.Config(), cli.StoreOptions{
		Location: flags.Location(),
		Logger:   logging.FromContext(ctx),
	})
	if err != nil {
		return "", "", errors.NewConfigError(err)
	}

	var version string
	if doc, err := store.Inspect(ctx); err == nil {
		version = doc.Version()
	}
	return store.Path(), version, nil
}
