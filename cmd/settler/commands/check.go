package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/internal/cli"
	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/validator"
)

var checkJSON bool

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the settings file without changing it",
	Long: `Validate the settings file on disk against the schema of the current
application version and list every problem.

Nothing is written: an invalid file is reported, not repaired. A file at a
different version is reported with a warning, since init will migrate it.`,
	Example: `  # Validate
  settler check

  # Machine-readable output
  settler check --json

  See Also: settler init, settler watch`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return runCheck(c, os.Stdout)
	},
}

func runCheck(c *cobra.Command, w io.Writer) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}

	format := validator.FormatText
	if checkJSON {
		format = validator.FormatJSON
	}

	res, err := checkFile(c.Context(), store)
	if err != nil {
		return err
	}
	if err := validator.NewReporter(w, format).Report(store.Path(), res); err != nil {
		return err
	}
	if res.HasErrors() {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrValidation, "%s", store.Path()),
			"Run 'settler init' to repair or 'settler reset' to start over",
		)
	}
	return nil
}

// checkFile validates the file on disk without repairing it.
func checkFile(ctx context.Context, store *cli.Store) (*validator.Result, error) {
	doc, err := store.Inspect(ctx)
	switch {
	case errors.Is(err, errors.ErrNotFound):
		return nil, errors.NewUserError(err, "Run 'settler init' to create it")
	case err != nil:
		res := &validator.Result{}
		res.AddError("", err.Error(), nil)
		return res, nil
	}

	res := store.Check(doc)
	if v := doc.Version(); v != "" && v != store.Version() {
		res.AddWarning("version",
			fmt.Sprintf("settings are at %s; init will migrate them to %s", v, store.Version()), v)
	}
	return res, nil
}
