package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/internal/backup"
	"github.com/thoreinstein/settler/internal/errors"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	Cmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available backups",
	Long: `List all settings backups, most recent first, with the reason each one
was taken and the settings version it holds.`,
	Example: `  # List all backups
  settler backup list

  # Output as JSON
  settler backup list --json

  See Also:
    settler backup restore - Restore from a backup
    settler backup create  - Create a new backup`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runList(os.Stdout, manager())
	},
}

// infoOutput represents a single backup in JSON output.
type infoOutput struct {
	ID              string        `json:"id"`
	CreatedAt       time.Time     `json:"created_at"`
	Reason          backup.Reason `json:"reason"`
	DocumentVersion string        `json:"document_version,omitempty"`
	FileCount       int           `json:"file_count"`
}

func runList(w io.Writer, mgr *backup.Manager) error {
	manifests, err := mgr.List()
	if err != nil && !errors.Is(err, backup.ErrNoBackupsFound) {
		return errors.Wrap(err, "listing backups")
	}

	if listJSON {
		return outputListJSON(w, manifests)
	}
	outputListTabular(w, mgr.Dir(), manifests)
	return nil
}

func outputListJSON(w io.Writer, manifests []backup.Manifest) error {
	output := make([]infoOutput, len(manifests))
	for i, m := range manifests {
		output[i] = infoOutput{
			ID:              m.ID,
			CreatedAt:       m.CreatedAt,
			Reason:          m.Reason,
			DocumentVersion: m.DocumentVersion,
			FileCount:       len(m.Files),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(output), "encoding output")
}

func outputListTabular(w io.Writer, dir string, manifests []backup.Manifest) {
	fmt.Fprintf(w, "%s\n", cyan("Backups in "+dir))

	if len(manifests) == 0 {
		fmt.Fprintf(w, "  %s\n", gray("(no backups available)"))
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Backups are created automatically before settler migrates or resets settings.")
		fmt.Fprintln(w, "You can also create a backup manually with: settler backup create")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", bold("ID"), bold("CREATED"), bold("REASON"), bold("VERSION"))
	for _, m := range manifests {
		version := m.DocumentVersion
		if version == "" {
			version = "-"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
			green(m.ID),
			m.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			m.Reason,
			version)
	}
	tw.Flush()
}
