package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or migrate the settings file",
	Long: `Create the settings file from the defaults, or bring an existing one to
the current application version.

Older files are upgraded and newer ones downgraded through the registered
migrations. Files that are not valid JSON, lack a version, or fail
validation after migrating are replaced by the defaults. A backup is taken
before an existing file is overwritten.`,
	Example: `  # Initialize in the default location
  settler init

  # Initialize a file in another directory
  settler init --dir ./testdata

  See Also: settler migrate, settler backup list`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return runInit(c, os.Stdout)
	},
}

func runInit(c *cobra.Command, w io.Writer) error {
	store, err := initStore(c)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Settings ready at %s (version %s)\n", store.Path(), store.Version())
	return nil
}
