package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pathCmd)
}

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return runPath(c, os.Stdout)
	},
}

func runPath(c *cobra.Command, w io.Writer) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, store.Path())
	return nil
}
