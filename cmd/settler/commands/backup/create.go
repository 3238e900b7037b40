package backup

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/internal/backup"
	"github.com/thoreinstein/settler/internal/errors"
)

func init() {
	Cmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a backup of the settings file",
	Long: `Snapshot the settings file now. Older snapshots beyond the configured
retention count are removed afterwards.`,
	Example: `  # Back up the default settings file
  settler backup create

  # Back up a settings file in another directory
  settler backup create --dir ./testdata

  See Also:
    settler backup list  - List available backups
    settler backup prune - Remove old backups`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, version, err := settingsFile(cmd.Context())
		if err != nil {
			return err
		}
		return runCreate(os.Stdout, manager(), path, version)
	},
}

func runCreate(w io.Writer, mgr *backup.Manager, path, version string) error {
	m, err := mgr.Backup(backup.ReasonManual, version, path)
	if err != nil {
		if errors.Is(err, backup.ErrNoBackupsFound) {
			return errors.NewUserError(
				errors.Newf("no settings file at %s", path),
				"Run 'settler init' to create it",
			)
		}
		return errors.Wrap(err, "creating backup")
	}

	fmt.Fprintf(w, "%s Created backup %s\n", green("✓"), m.ID)
	return nil
}
