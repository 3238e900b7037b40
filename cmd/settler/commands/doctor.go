package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/cmd/settler/commands/flags"
	"github.com/thoreinstein/settler/internal/cli"
	"github.com/thoreinstein/settler/internal/config"
	"github.com/thoreinstein/settler/internal/doctor"
	"github.com/thoreinstein/settler/internal/errors"
)

var (
	doctorJSON    bool
	doctorVerbose bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "all", false,
		"show every check, including passed ones")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"tighten file permissions that checks flag as fixable")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration and settings file issues",
	Long: `Run diagnostic checks on settler's configuration, the settings file and
its backups without changing anything (unless --fix is given).

Checks:
  config            configuration values are valid
  path-permissions  the settings directory is writable and not world-writable
  settings-file     the file parses and matches the current schema
  version           the file can be migrated to the application version
  backups           the backup directory can be listed

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --all       Show all checks including passed ones
  --json      Machine-readable JSON output

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present`,
	PreRunE: validateDoctorFlags,
	RunE: func(c *cobra.Command, _ []string) error {
		return runDoctor(c, os.Stdout)
	},
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	if doctorJSON && doctorVerbose {
		return errors.NewUserError(errors.New("flags --json and --all are mutually exclusive"), "")
	}
	return nil
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

// errDoctorWarnings is a sentinel error for exit code 1.
var errDoctorWarnings = errors.New("doctor found warnings")

// errDoctorErrors is a sentinel error for exit code 2.
var errDoctorErrors = errors.New("doctor found errors")

func runDoctor(c *cobra.Command, w io.Writer) error {
	cfg := flags.Config()
	store, err := openStore(c)
	if err != nil {
		return err
	}

	runner := doctor.NewRunner()
	runner.AddCheck(doctor.NewConfigCheck(cfg, config.FileUsed()))
	runner.AddCheck(doctor.NewPathPermissionCheck(nil, store.Path()))
	runner.AddCheck(doctor.NewSettingsFileCheck(store))
	runner.AddCheck(doctor.NewVersionCheck(store, cfg.ResetOnUnreachable))
	runner.AddCheck(doctor.NewBackupCheck(cli.NewBackupManager(cfg, nil)))

	report := runner.Run(c.Context())

	if doctorFix {
		fixes := runner.Fix()
		if !doctorJSON {
			printFixes(w, fixes)
		}
		if len(fixes) > 0 {
			report = runner.Run(c.Context())
		}
	}

	if !quiet {
		if err := outputDoctorReport(w, report); err != nil {
			return err
		}
	}

	if report.HasErrors() {
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

func printFixes(w io.Writer, fixes []doctor.FixResult) {
	for _, f := range fixes {
		if f.Fixed {
			fmt.Fprintf(w, "%s fixed %s: %s\n", green("✓"), f.Path, f.Description)
			continue
		}
		fmt.Fprintf(w, "%s could not fix %s: %s\n", red("✗"), f.Path, f.Description)
	}
	if len(fixes) > 0 {
		fmt.Fprintln(w)
	}
}

func outputDoctorReport(w io.Writer, report *doctor.Report) error {
	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
		return nil
	}

	hasOutput := false
	for _, result := range report.Results {
		problem := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !doctorVerbose && !problem {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)
		if result.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if hasOutput {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
	return nil
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return green("✓")
	case doctor.SeverityInfo:
		return cyan("ℹ")
	case doctor.SeverityWarning:
		return yellow("⚠")
	case doctor.SeverityError:
		return red("✗")
	default:
		return "?"
	}
}
