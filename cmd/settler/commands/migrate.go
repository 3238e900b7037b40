package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/cmd/settler/commands/flags"
	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/migrate"
)

var migrateDryRun bool

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "show the migration plan without changing anything")
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the settings file to the application version",
	Long: `Show which migrations take the settings file from its version to the
current application version, then run them.

With --dry-run nothing is written. The plan lists each step in the order it
runs; a downgrade step without a down migration makes the target
unreachable.`,
	Example: `  # Preview
  settler migrate --dry-run

  # Migrate to a specific version
  SETTLER_APP_VERSION=0.1.0 settler migrate

  See Also: settler init, settler backup list`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return runMigrate(c, os.Stdout)
	},
}

func runMigrate(c *cobra.Command, w io.Writer) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}

	doc, err := store.Inspect(c.Context())
	switch {
	case errors.Is(err, errors.ErrNotFound):
		fmt.Fprintf(w, "No settings file at %s; it will be created from the defaults\n", store.Path())
		if migrateDryRun {
			return nil
		}
		return runInit(c, w)
	case err != nil:
		fmt.Fprintf(w, "Settings file is unreadable (%v); it will be reset to the defaults\n", err)
		if migrateDryRun {
			return nil
		}
		return runInit(c, w)
	}

	plan, err := store.Table().Plan(doc.Version(), store.Version())
	if err != nil {
		fmt.Fprintf(w, "Settings version %q is invalid; the file will be reset to the defaults\n", doc.Version())
		if migrateDryRun {
			return nil
		}
		return runInit(c, w)
	}

	printPlan(w, plan)
	if migrateDryRun {
		return nil
	}
	if _, ok := plan.Reachable(); !ok && !flags.Config().ResetOnUnreachable {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrMigrationUnreachable, "cannot migrate from %s to %s", plan.From, plan.To),
			"Restore a backup with 'settler backup restore', or run 'settler reset'",
		)
	}
	return runInit(c, w)
}

func printPlan(w io.Writer, p *migrate.Plan) {
	if p.Direction == migrate.None {
		fmt.Fprintf(w, "Settings are at version %s; nothing to migrate\n", p.From)
		return
	}

	fmt.Fprintf(w, "%s %s -> %s\n", p.Direction, p.From, p.To)
	if len(p.Steps) == 0 {
		fmt.Fprintln(w, "  no migrations apply; only the version changes")
	}
	for _, s := range p.Steps {
		status := "ok"
		if p.Direction == migrate.Down && s.Down == nil {
			status = "missing down migration"
		}
		fmt.Fprintf(w, "  %s  %s\n", s.Version, status)
	}
	if v, ok := p.Reachable(); !ok {
		fmt.Fprintf(w, "unreachable: no down migration for %s\n", v)
	}
}
