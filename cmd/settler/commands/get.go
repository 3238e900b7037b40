package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/settings"
)

var (
	getFormat      string
	getInteractive bool
)

func init() {
	getCmd.Flags().StringVarP(&getFormat, "format", "o", formatJSON, "output format: json, yaml, toml")
	getCmd.Flags().BoolVarP(&getInteractive, "interactive", "i", false, "pick the path with a fuzzy finder")
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get [path]",
	Short: "Print settings",
	Long: `Print the whole settings document, or the value at a dotted path.

Paths use dots between keys and numbers for list elements. Escape a literal
dot inside a key with a backslash.`,
	Example: `  # Print everything
  settler get

  # Print one section as YAML
  settler get image.preview --format yaml

  # Choose a value interactively
  settler get -i

  See Also: settler set, settler path`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return runGet(c, os.Stdout, args)
	},
}

func runGet(c *cobra.Command, w io.Writer, args []string) error {
	store, err := initStore(c)
	if err != nil {
		return err
	}
	h, err := store.Ref(c.Context())
	if err != nil {
		return errors.NewSystemError(err, "")
	}

	ref := h.Settings()
	switch {
	case getInteractive:
		path, err := pickPath(ref)
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		if err != nil {
			return err
		}
		ref = ref.At(path)
	case len(args) == 1:
		ref = ref.At(args[0])
	}

	if !ref.Exists() {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "settings path %q", ref.Path()),
			"Run 'settler get' to see every setting",
		)
	}
	return render(w, ref.Value(), getFormat)
}

// leafPaths lists the dotted path of every non-object value below r.
func leafPaths(r *settings.Ref) []string {
	if !r.IsObject() {
		if r.Path() == "" {
			return nil
		}
		return []string{r.Path()}
	}
	var out []string
	for _, key := range r.Keys() {
		out = append(out, leafPaths(r.Get(key))...)
	}
	return out
}

func pickPath(root *settings.Ref) (string, error) {
	leaves := leafPaths(root)
	if len(leaves) == 0 {
		return "", errors.New("settings document is empty")
	}

	idx, err := fuzzyfinder.Find(
		leaves,
		func(i int) string { return leaves[i] },
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			r := root.At(leaves[i])
			return fmt.Sprintf("Path: %s\n\n%s", leaves[i], r.Raw())
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", err
		}
		return "", errors.Wrap(err, "interactive selection failed")
	}
	return leaves[idx], nil
}
