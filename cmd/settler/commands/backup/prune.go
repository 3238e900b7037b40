package backup

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/internal/backup"
	"github.com/thoreinstein/settler/internal/errors"
)

var pruneKeep int

func init() {
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", backup.DefaultRetentionCount,
		"Number of backups to retain")
	Cmd.AddCommand(pruneCmd)
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old backups",
	Long: `Remove old backups beyond the retention count.

By default, keeps the 5 most recent backups and removes older ones.
Use the --keep flag to specify a different retention count.`,
	Example: `  # Keep the default (5) backups
  settler backup prune

  # Keep only the 3 most recent backups
  settler backup prune --keep 3

  # Remove all backups
  settler backup prune --keep 0

  See Also:
    settler backup list   - List available backups
    settler backup create - Create a new backup`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runPrune(os.Stdout, manager(), pruneKeep)
	},
}

func runPrune(w io.Writer, mgr *backup.Manager, keep int) error {
	if keep < 0 {
		return errors.NewUserError(errors.New("--keep must be non-negative"), "")
	}

	manifests, err := mgr.List()
	if err != nil {
		if errors.Is(err, backup.ErrNoBackupsFound) {
			fmt.Fprintln(w, "No backups to prune")
			return nil
		}
		return errors.Wrap(err, "listing backups")
	}

	toRemove := len(manifests) - keep
	if toRemove <= 0 {
		fmt.Fprintln(w, "No backups to prune")
		return nil
	}

	if err := mgr.Prune(keep); err != nil {
		return errors.Wrap(err, "pruning backups")
	}

	fmt.Fprintf(w, "%s Removed %d old backup(s)\n", green("✓"), toRemove)
	return nil
}
