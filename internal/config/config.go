// Package config provides configuration management for settler using Viper.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/paths"
	"github.com/thoreinstein/settler/pkg/fileutil"
)

// AppName is the application name used for config file naming.
const AppName = paths.AppName

// EnvConfigDir overrides the directory searched for config.yaml.
const EnvConfigDir = "SETTLER_CONFIG_DIR"

// Config keys.
const (
	KeyVersion            = "version"
	KeySettingsDir        = "settings_dir"
	KeyFileName           = "file_name"
	KeyAtomicSave         = "atomic_save"
	KeyPrettify           = "prettify"
	KeyNumSpaces          = "num_spaces"
	KeyBackupRetention    = "backup_retention"
	KeyBackupDir          = "backup_dir"
	KeyResetOnUnreachable = "reset_on_unreachable"
)

// Default values.
const (
	DefaultNumSpaces       = 2
	DefaultBackupRetention = 5
)

// Config represents the top-level configuration structure.
type Config struct {
	Version            int    `mapstructure:"version" yaml:"version" toml:"version" json:"version"`
	SettingsDir        string `mapstructure:"settings_dir" yaml:"settings_dir" toml:"settings_dir" json:"settings_dir"`
	FileName           string `mapstructure:"file_name" yaml:"file_name" toml:"file_name" json:"file_name"`
	AtomicSave         bool   `mapstructure:"atomic_save" yaml:"atomic_save" toml:"atomic_save" json:"atomic_save"`
	Prettify           bool   `mapstructure:"prettify" yaml:"prettify" toml:"prettify" json:"prettify"`
	NumSpaces          int    `mapstructure:"num_spaces" yaml:"num_spaces" toml:"num_spaces" json:"num_spaces"`
	BackupRetention    int    `mapstructure:"backup_retention" yaml:"backup_retention" toml:"backup_retention" json:"backup_retention"`
	BackupDir          string `mapstructure:"backup_dir" yaml:"backup_dir" toml:"backup_dir" json:"backup_dir"`
	ResetOnUnreachable bool   `mapstructure:"reset_on_unreachable" yaml:"reset_on_unreachable" toml:"reset_on_unreachable" json:"reset_on_unreachable"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Version:         1,
		FileName:        paths.DefaultSettingsFile,
		AtomicSave:      true,
		Prettify:        true,
		NumSpaces:       DefaultNumSpaces,
		BackupRetention: DefaultBackupRetention,
	}
}

// SettingsPath returns the settings file location, falling back to the
// user data directory when no directory is configured.
func (c *Config) SettingsPath() string {
	dir := c.SettingsDir
	if dir == "" {
		dir = paths.UserDataDir(AppName)
	}
	name := c.FileName
	if name == "" {
		name = paths.DefaultSettingsFile
	}
	return filepath.Join(dir, name)
}

// Init resets Viper and installs defaults, search paths and environment
// binding. Call this once at application startup before accessing config
// values.
func Init() {
	viper.Reset()

	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		viper.AddConfigPath(dir)
	}
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	// Environment variable support
	viper.SetEnvPrefix("SETTLER")
	viper.AutomaticEnv()

	def := Default()
	viper.SetDefault(KeyVersion, def.Version)
	viper.SetDefault(KeySettingsDir, def.SettingsDir)
	viper.SetDefault(KeyFileName, def.FileName)
	viper.SetDefault(KeyAtomicSave, def.AtomicSave)
	viper.SetDefault(KeyPrettify, def.Prettify)
	viper.SetDefault(KeyNumSpaces, def.NumSpaces)
	viper.SetDefault(KeyBackupRetention, def.BackupRetention)
	viper.SetDefault(KeyBackupDir, def.BackupDir)
	viper.SetDefault(KeyResetOnUnreachable, def.ResetOnUnreachable)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file; its extension
// selects the format (yaml or toml).
// If path is empty, it searches in the default locations and falls back to
// defaults when no file is found.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load without a file uses defaults
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			return nil, errors.Wrapf(errors.Mark(err, errors.ErrNotFound), "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	return Current()
}

// Current decodes and validates the values Viper holds now, including any
// set with viper.Set since the last Load.
func Current() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Mark(errs[0], errors.ErrInvalidConfig), "validating config")
	}

	return &cfg, nil
}

// Keys lists every configuration key in display order.
func Keys() []string {
	return []string{
		KeyVersion,
		KeySettingsDir,
		KeyFileName,
		KeyAtomicSave,
		KeyPrettify,
		KeyNumSpaces,
		KeyBackupRetention,
		KeyBackupDir,
		KeyResetOnUnreachable,
	}
}

// IsKey reports whether key names a configuration key.
func IsKey(key string) bool {
	return slices.Contains(Keys(), key)
}

// DefaultPath is where Save writes when no config file was loaded.
func DefaultPath() string {
	return filepath.Join(paths.ConfigDir(), "config.yaml")
}

// Save writes cfg to path, creating the directory when needed. A ".toml"
// extension selects TOML; anything else is written as YAML.
func Save(fsys afero.Fs, path string, cfg *Config) error {
	if err := fsys.MkdirAll(filepath.Dir(path), paths.DefaultDirPerm); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	var err error
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = fileutil.AtomicWriteTOML(fsys, path, cfg)
	} else {
		err = fileutil.AtomicWriteYAML(fsys, path, cfg)
	}
	return errors.Wrap(err, "writing config file")
}

// FileUsed returns the config file Viper loaded, or "" when defaults are in
// effect.
func FileUsed() string {
	return viper.ConfigFileUsed()
}
