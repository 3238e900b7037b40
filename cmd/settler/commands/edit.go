package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/internal/cli/prompt"
	"github.com/thoreinstein/settler/internal/editor"
	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/validator"
	"github.com/thoreinstein/settler/pkg/fileutil"
)

func init() {
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the settings file in your editor",
	Long: `Open the settings file in $SETTLER_EDITOR, $EDITOR or $VISUAL and validate
it when the editor exits.

If the edited file is invalid the problems are listed and you can edit it
again. Declining puts the previous contents back.`,
	Example: `  # Edit with the default editor
  settler edit

  # Edit with VS Code
  SETTLER_EDITOR="code --wait" settler edit

  See Also: settler set, settler check`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		open := func(ctx context.Context, path string) error {
			return editor.Open(ctx, path, editor.StdStreams())
		}
		return runEdit(c, os.Stdout, prompt.New(), open)
	},
}

func runEdit(c *cobra.Command, w io.Writer, p *prompt.Prompter, open func(context.Context, string) error) error {
	ctx := c.Context()

	store, err := initStore(c)
	if err != nil {
		return err
	}
	path := store.Path()

	fsys := afero.NewOsFs()
	original, err := fileutil.ReadFileWithLimit(fsys, path)
	if err != nil {
		return errors.NewSystemError(err, "")
	}

	reporter := validator.NewReporter(w, validator.FormatText)
	for {
		if err := open(ctx, path); err != nil {
			return errors.NewUserError(err, "Set $SETTLER_EDITOR or $EDITOR to your editor")
		}

		res, err := checkFile(ctx, store)
		if err != nil {
			return err
		}
		if !res.HasErrors() {
			fmt.Fprintf(w, "Saved %s\n", path)
			return nil
		}
		if err := reporter.Report(path, res); err != nil {
			return err
		}

		again, err := p.Confirm("Edit again?")
		if err != nil && !errors.Is(err, prompt.ErrSelectionCancelled) {
			return err
		}
		if again {
			continue
		}

		if err := fileutil.AtomicWriteFile(fsys, path, original, 0o600); err != nil {
			return errors.NewSystemError(err, "")
		}
		fmt.Fprintln(w, "Discarded the changes; the previous settings are back")
		return errors.NewUserError(
			errors.Wrapf(errors.ErrValidation, "%s", path),
			"Run 'settler check' after editing to see what is wrong",
		)
	}
}
