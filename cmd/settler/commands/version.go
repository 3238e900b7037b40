package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/cmd"
	"github.com/thoreinstein/settler/internal/appsettings"
	"github.com/thoreinstein/settler/internal/cli"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long: `Print the version, commit, and build date of settler, and the settings
version documents are migrated to.

The settings version is the build version unless $SETTLER_APP_VERSION is set.
Development builds fall back to the newest version the schema describes.`,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("settler version %s\n", cmd.Version)
		fmt.Printf("  commit:   %s\n", cmd.Commit)
		fmt.Printf("  built:    %s\n", cmd.Date)
		fmt.Printf("  go:       %s\n", runtime.Version())
		fmt.Printf("  settings: %s\n", appVersion())
		fmt.Printf("  schema:   %s\n", appsettings.SchemaVersion)
	},
}

// appVersion is the version settings documents are migrated to.
func appVersion() string {
	return cli.ResolveVersion(cmd.Version)
}
