package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/settler/internal/config"
	"github.com/thoreinstein/settler/internal/errors"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage settler configuration",
	Long: `Manage settler's own configuration stored in ~/.config/settler/config.yaml.

This controls where the settings file lives and how it is written, not the
settings themselves. Every key can also be set through the environment as
SETTLER_<KEY>, for example SETTLER_NUM_SPACES=4.

Without a subcommand, lists all configuration values.`,
	Example: `  # List all configuration
  settler config

  # Get a specific value
  settler config get num_spaces

  # Set a value
  settler config set prettify false

See Also: settler path`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runConfigList(os.Stdout)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runConfigGet(os.Stdout, args[0])
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save the configuration file.

The value is validated before anything is written.`,
	Example: `  # Indent with four spaces
  settler config set num_spaces 4

  # Keep more backups
  settler config set backup_retention 10

See Also: settler config get, settler config list`,
	Args: cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		return runConfigSet(os.Stdout, afero.NewOsFs(), args[0], args[1])
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List all configuration values in YAML format.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runConfigList(os.Stdout)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Println(configPath())
		return nil
	},
}

func unknownKey(key string) error {
	return errors.NewUserError(
		errors.Newf("unknown config key %q", key),
		"Valid keys: "+strings.Join(config.Keys(), ", "),
	)
}

func runConfigGet(w io.Writer, key string) error {
	if !config.IsKey(key) {
		return unknownKey(key)
	}
	fmt.Fprintln(w, viper.GetString(key))
	return nil
}

func runConfigSet(w io.Writer, fsys afero.Fs, key, value string) error {
	if !config.IsKey(key) {
		return unknownKey(key)
	}

	prev := viper.Get(key)
	viper.Set(key, value)
	cfg, err := config.Current()
	if err != nil {
		viper.Set(key, prev)
		return errors.NewUserError(err, "Run 'settler config list' to see current values")
	}

	path := configPath()
	if err := config.Save(fsys, path, cfg); err != nil {
		return errors.NewSystemError(err, "")
	}
	fmt.Fprintf(w, "Set %s = %s in %s\n", key, viper.GetString(key), path)
	return nil
}

func runConfigList(w io.Writer) error {
	cfg, err := config.Current()
	if err != nil {
		return errors.NewConfigError(err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	fmt.Fprint(w, string(data))
	return nil
}

// configPath is the file config set writes to.
func configPath() string {
	if used := config.FileUsed(); used != "" {
		return used
	}
	return config.DefaultPath()
}
