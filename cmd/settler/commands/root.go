// Package commands implements the CLI commands for settler.
package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/cmd"
	"github.com/thoreinstein/settler/cmd/settler/commands/backup"
	"github.com/thoreinstein/settler/cmd/settler/commands/flags"
	"github.com/thoreinstein/settler/internal/cli"
	"github.com/thoreinstein/settler/internal/config"
	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/logging"
)

// EnvDebug raises the log level when no -v flag is given.
const EnvDebug = "SETTLER_DEBUG"

var (
	// verbosity holds the count of -v flags.
	verbosity int
	// quiet holds the value of the -q/--quiet flag.
	quiet bool
	// logFormat holds the value of the --log-format flag.
	logFormat string
	// logFile holds the path to the log file.
	logFile string
	// colorMode holds the value of the --color flag.
	colorMode string
	// configFile holds an explicit --config path.
	configFile string
	// settingsDir and settingsFile hold --dir and --file.
	settingsDir  string
	settingsFile string
)

var (
	loadedConfig  *config.Config
	configLoadErr error
	openLogFile   *os.File
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"also write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto",
		"colour log output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: search $SETTLER_CONFIG_DIR, ., ~/.config/settler)")
	rootCmd.PersistentFlags().StringVar(&settingsDir, "dir", "",
		"directory holding the settings file")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "file", "",
		"settings file name (default: settings.json)")

	rootCmd.AddCommand(backup.Cmd)

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("settler version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	loadedConfig, configLoadErr = config.Load(configFile)
}

var rootCmd = &cobra.Command{
	Use:   "settler",
	Short: "Versioned application settings store",
	Long: `settler keeps an application's settings file valid across upgrades and
downgrades of the application.

The settings file is a JSON document carrying its own version. On init,
settler migrates it to the current application version through a chain of
up or down transforms, validates the result and writes it back atomically.
Invalid or corrupt files are replaced by the defaults.`,
	Example: `  # Create or migrate the settings file
  settler init

  # Read a value
  settler get image.thumbnail.resolution

  # Change a value (validated before it is written)
  settler set exiftool.maxProcs 4

  # Show what a migration would do
  settler migrate --dry-run

  See Also: settler backup, settler config`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return applyConfig(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return errors.NewUserError(err, "Use --log-format text or --log-format json")
	}
	colors, err := logging.ParseColorMode(colorMode)
	if err != nil {
		return errors.NewUserError(err, "Use --color auto, always or never")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv(EnvDebug); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	cfg := logging.Config{
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
		Color:  colors,
	}
	if logFile != "" {
		f, err := logging.OpenFile(logFile)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		closeLogFile()
		openLogFile = f
		cfg.File = f
	}

	logger := logging.New(cfg)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// applyConfig publishes the loaded config and the location flags to
// subcommands.
func applyConfig(cmd *cobra.Command) error {
	// help and version work without a usable config
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}
	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}

	if loadedConfig != nil {
		if used := config.FileUsed(); used != "" {
			logging.FromContext(cmd.Context()).Debug("loaded config", "path", used)
		}
	}
	flags.SetConfig(loadedConfig)
	flags.SetLocation(cli.Location{Dir: settingsDir, FileName: settingsFile})
	return nil
}

func closeLogFile() {
	if openLogFile != nil {
		_ = openLogFile.Close()
		openLogFile = nil
	}
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer closeLogFile()

	return errors.Wrap(rootCmd.ExecuteContext(ctx), "executing root command")
}
