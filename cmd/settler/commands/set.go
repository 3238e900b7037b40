package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/validator"
)

func init() {
	rootCmd.AddCommand(setCmd)
}

var setCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Change a setting",
	Long: `Change the value at a dotted path and save the settings file.

The value is read as JSON when it parses (numbers, true/false, null, quoted
strings, objects and lists) and as a plain string otherwise. The whole
document is validated before it is written; a rejected value leaves the
file untouched and the problems are listed.`,
	Example: `  # Set a number
  settler set exiftool.maxProcs 4

  # Set a nested object
  settler set image.thumbnail.resolution '{"width":512,"height":512}'

  # Set an encoder option
  settler set image.preview.webpOptions.quality 85

  See Also: settler get, settler check`,
	Args: cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		return runSet(c, os.Stdout, args[0], args[1])
	},
}

// parseValue decodes s as JSON, falling back to the literal string.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}

func runSet(c *cobra.Command, w io.Writer, path, raw string) error {
	ctx := c.Context()

	store, err := initStore(c)
	if err != nil {
		return err
	}
	h, err := store.Ref(ctx)
	if err != nil {
		return errors.NewSystemError(err, "")
	}

	ref := h.Settings().At(path)
	value := parseValue(raw)

	ok, err := ref.Set(ctx, value)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	if !ok {
		if doc, perr := ref.Preview(value); perr == nil {
			_ = validator.NewReporter(w, validator.FormatText).Report(path, store.Check(doc))
		}
		return errors.NewUserError(
			errors.Wrapf(errors.ErrValidation, "rejected value for %q", path),
			"Run 'settler get' to see the current settings",
		)
	}

	if !ref.Exists() {
		fmt.Fprintf(w, "%s is not a known setting and was dropped\n", path)
		return nil
	}
	fmt.Fprintf(w, "Set %s = %s\n", path, ref.Raw())
	return nil
}
