package settings

import (
	"log/slog"

	"github.com/spf13/afero"

	"github.com/thoreinstein/settler/internal/backup"
	"github.com/thoreinstein/settler/internal/paths"
)

// DefaultNumSpaces is the indent width used when pretty-printing.
const DefaultNumSpaces = 2

// Config holds the deployment parameters of a Store.
type Config struct {
	// AtomicSave replaces the file through a temp file and rename.
	// Disable it for filesystems that cannot rename over an existing file.
	AtomicSave bool

	// Dir is the directory holding the settings file. Empty means the
	// per-user data directory.
	Dir string

	// FileName is the settings file name inside Dir.
	FileName string

	// NumSpaces is the indent width when Prettify is set.
	NumSpaces int

	// Prettify writes indented JSON instead of a single line.
	Prettify bool
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		AtomicSave: true,
		FileName:   paths.DefaultSettingsFile,
		NumSpaces:  DefaultNumSpaces,
		Prettify:   true,
	}
}

type options struct {
	cfg                Config
	fs                 afero.Fs
	logger             *slog.Logger
	version            string
	backups            *backup.Manager
	resetOnUnreachable bool
}

// Option configures a Store.
type Option func(*options)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithDir sets the directory holding the settings file.
func WithDir(dir string) Option {
	return func(o *options) {
		o.cfg.Dir = dir
	}
}

// WithFileName sets the settings file name.
func WithFileName(name string) Option {
	return func(o *options) {
		o.cfg.FileName = name
	}
}

// WithAtomicSave toggles temp-file-and-rename writes.
func WithAtomicSave(atomic bool) Option {
	return func(o *options) {
		o.cfg.AtomicSave = atomic
	}
}

// WithIndent sets JSON pretty-printing. spaces is ignored when prettify is
// false.
func WithIndent(prettify bool, spaces int) Option {
	return func(o *options) {
		o.cfg.Prettify = prettify
		o.cfg.NumSpaces = spaces
	}
}

// WithFs sets the filesystem. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithVersion sets the current application version documents are migrated
// to. Defaults to the version of the default settings.
func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

// WithBackups snapshots the settings file before a migration result or a
// corruption reset overwrites it.
func WithBackups(m *backup.Manager) Option {
	return func(o *options) {
		o.backups = m
	}
}

// WithResetOnUnreachable makes Init replace a document that cannot be
// downgraded with the defaults instead of leaving it on disk.
func WithResetOnUnreachable(reset bool) Option {
	return func(o *options) {
		o.resetOnUnreachable = reset
	}
}
