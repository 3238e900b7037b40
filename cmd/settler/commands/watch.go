package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/internal/cli"
	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/logging"
	"github.com/thoreinstein/settler/internal/validator"
	"github.com/thoreinstein/settler/internal/watch"
)

var (
	watchRepair   bool
	watchDebounce time.Duration
)

func init() {
	watchCmd.Flags().BoolVar(&watchRepair, "repair", false, "replace an invalid file with the defaults")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "wait this long for writes to settle")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Validate the settings file whenever it changes",
	Long: `Watch the settings file and validate it after every external edit.

With --repair an invalid file is replaced by the defaults, the same way the
application would on its next load. Stop with Ctrl+C.`,
	Example: `  # Report problems while editing by hand
  settler watch

  # Keep the file valid
  settler watch --repair

  See Also: settler check`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return runWatch(c, os.Stdout)
	},
}

func runWatch(c *cobra.Command, w io.Writer) error {
	store, err := initStore(c)
	if err != nil {
		return err
	}
	log := logging.FromContext(c.Context())
	reporter := validator.NewReporter(w, validator.FormatText)

	fmt.Fprintf(w, "Watching %s\n", store.Path())

	watcher := watch.New(store.Path(),
		watch.WithDebounce(watchDebounce),
		watch.WithLogger(log),
	)
	err = watcher.Run(c.Context(), func(ctx context.Context, ev watch.Event) {
		if ev.Removed {
			fmt.Fprintf(w, "%s was removed\n", ev.Path)
			return
		}
		onSettingsChanged(ctx, store, reporter, w)
	})
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	return nil
}

func onSettingsChanged(ctx context.Context, store *cli.Store, reporter *validator.Reporter, w io.Writer) {
	log := logging.FromContext(ctx)

	res, err := checkFile(ctx, store)
	if err != nil {
		log.Warn("could not check settings", "error", err)
		return
	}
	_ = reporter.Report(store.Path(), res)

	if !watchRepair || !res.HasErrors() {
		return
	}
	if _, err := store.Load(ctx); err != nil {
		log.Error("could not repair settings", "error", err)
		return
	}
	fmt.Fprintln(w, "Replaced invalid settings with the defaults")
}
