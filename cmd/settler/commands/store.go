package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/cmd/settler/commands/flags"
	"github.com/thoreinstein/settler/internal/cli"
	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/logging"
)

// openStore builds the settings store for the current invocation.
func openStore(c *cobra.Command) (*cli.Store, error) {
	store, err := cli.OpenStore(flags.Config(), cli.StoreOptions{
		Location: flags.Location(),
		Version:  appVersion(),
		Logger:   logging.FromContext(c.Context()),
	})
	if err != nil {
		return nil, errors.NewConfigError(err)
	}
	return store, nil
}

// initStore opens the store and reconciles the file on disk with the
// application version.
func initStore(c *cobra.Command) (*cli.Store, error) {
	store, err := openStore(c)
	if err != nil {
		return nil, err
	}
	if err := store.Init(c.Context()); err != nil {
		if errors.Is(err, errors.ErrMigrationUnreachable) {
			return nil, errors.NewUserError(err,
				"Restore a backup with 'settler backup restore', or run 'settler reset'")
		}
		return nil, errors.NewSystemError(err, "")
	}
	return store, nil
}
