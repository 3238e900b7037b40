package backup

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/internal/backup"
	"github.com/thoreinstein/settler/internal/cli/prompt"
	"github.com/thoreinstein/settler/internal/errors"
)

func init() {
	Cmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore [backup-id]",
	Short: "Restore from a backup",
	Long: `Restore the settings file from a backup.

Without a backup ID, choose one from a list (most recent first). The current
settings file is snapshotted before it is overwritten, so a restore can
itself be undone.

The restored file keeps the version it was saved with; the next init
migrates it to the application version.`,
	Example: `  # Choose a backup to restore
  settler backup restore

  # Restore a specific backup
  settler backup restore 20260123T100712.000000000

  See Also:
    settler backup list - List available backups
    settler init        - Migrate the restored file`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, version, err := settingsFile(cmd.Context())
		if err != nil {
			return err
		}
		var id string
		if len(args) > 0 {
			id = args[0]
		}
		return runRestore(os.Stdout, prompt.New(), manager(), id, version)
	},
}

func runRestore(w io.Writer, p *prompt.Prompter, mgr *backup.Manager, id, version string) error {
	if id == "" {
		var err error
		if id, err = chooseBackup(p, mgr); err != nil {
			return err
		}
	}

	manifest, err := mgr.Get(id)
	if err != nil {
		return errors.NewUserError(errors.Wrapf(err, "getting backup %s", id),
			"Run 'settler backup list' to see available backups")
	}

	fmt.Fprintf(w, "Restoring %d file(s) from backup %s...\n", len(manifest.Files), id)
	_, saved, err := mgr.Restore(id, version)
	if saved != nil {
		fmt.Fprintf(w, "Saved previous settings as backup %s\n", saved.ID)
	}
	if err != nil {
		return errors.Wrap(err, "restoring backup")
	}

	fmt.Fprintf(w, "%s Restored settings from backup %s\n", green("✓"), id)
	return nil
}

func chooseBackup(p *prompt.Prompter, mgr *backup.Manager) (string, error) {
	manifests, err := mgr.List()
	if err != nil {
		if errors.Is(err, backup.ErrNoBackupsFound) {
			return "", errors.NewUserError(errors.New("no backups found"),
				"Backups are created by 'settler init', 'settler reset' and 'settler backup create'")
		}
		return "", errors.Wrap(err, "listing backups")
	}

	labels := make([]string, len(manifests))
	for i, m := range manifests {
		labels[i] = fmt.Sprintf("%s  %s  %s", m.ID, m.Reason, m.DocumentVersion)
	}

	idx, err := p.Select("Choose a backup to restore", labels)
	if err != nil {
		return "", err
	}
	return manifests[idx].ID, nil
}
