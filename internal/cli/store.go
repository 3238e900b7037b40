// Package cli wires the settler command line to the settings store.
package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/thoreinstein/settler/internal/appsettings"
	"github.com/thoreinstein/settler/internal/backup"
	"github.com/thoreinstein/settler/internal/config"
	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/migrate"
	"github.com/thoreinstein/settler/internal/paths"
	"github.com/thoreinstein/settler/internal/settings"
)

// EnvAppVersion overrides the application version settings are migrated to.
const EnvAppVersion = "SETTLER_APP_VERSION"

// Store is the settings store for the application document.
type Store = settings.Store[appsettings.Settings]

// ResolveVersion picks the version documents are migrated to:
// $SETTLER_APP_VERSION, then the build version, then the version the
// application schema describes. Candidates that are not semantic versions
// (such as "dev") are skipped; a leading "v" is ignored.
func ResolveVersion(build string) string {
	for _, candidate := range []string{os.Getenv(EnvAppVersion), build} {
		v := strings.TrimPrefix(strings.TrimSpace(candidate), "v")
		if v == "" {
			continue
		}
		if _, err := migrate.Compare(v, v); err == nil {
			return v
		}
	}
	return appsettings.SchemaVersion
}

// Location is where the settings file lives. Empty fields fall back to the
// tool config and then to the defaults.
type Location struct {
	Dir      string
	FileName string
}

// Resolve fills l from cfg and expands a leading "~".
func (l Location) Resolve(cfg *config.Config) (Location, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if l.Dir == "" {
		l.Dir = cfg.SettingsDir
	}
	if l.Dir == "" {
		l.Dir = paths.UserDataDir(paths.AppName)
	}
	if l.FileName == "" {
		l.FileName = cfg.FileName
	}
	if l.FileName == "" {
		l.FileName = paths.DefaultSettingsFile
	}

	dir, err := paths.ExpandHome(l.Dir)
	if err != nil {
		return l, errors.Wrap(err, "resolving settings directory")
	}
	l.Dir = dir
	return l, nil
}

// Path returns the settings file path.
func (l Location) Path() string {
	return filepath.Join(l.Dir, l.FileName)
}

// StoreOptions are the per-invocation inputs to OpenStore.
type StoreOptions struct {
	Location Location
	Version  string
	Logger   *slog.Logger

	// Fs defaults to the OS filesystem.
	Fs afero.Fs
}

// OpenStore builds the application settings store from the tool config.
// It does not run Init.
func OpenStore(cfg *config.Config, opts StoreOptions) (*Store, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	loc, err := opts.Location.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	version := opts.Version
	if version == "" {
		version = ResolveVersion("")
	}

	storeOpts := []settings.Option{
		settings.WithConfig(settings.Config{
			AtomicSave: cfg.AtomicSave,
			Dir:        loc.Dir,
			FileName:   loc.FileName,
			NumSpaces:  cfg.NumSpaces,
			Prettify:   cfg.Prettify,
		}),
		settings.WithFs(fsys),
		settings.WithVersion(version),
		settings.WithResetOnUnreachable(cfg.ResetOnUnreachable),
		settings.WithBackups(NewBackupManager(cfg, fsys)),
	}
	if opts.Logger != nil {
		storeOpts = append(storeOpts, settings.WithLogger(opts.Logger))
	}

	store, err := settings.New(appsettings.Defaults(version), appsettings.Schema(), appsettings.Migrations(), storeOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "opening settings store")
	}
	return store, nil
}

// NewBackupManager returns the snapshot manager configured by cfg.
func NewBackupManager(cfg *config.Config, fsys afero.Fs) *backup.Manager {
	if cfg == nil {
		cfg = config.Default()
	}
	opts := []backup.Option{backup.WithRetentionCount(cfg.BackupRetention)}
	if cfg.BackupDir != "" {
		if dir, err := paths.ExpandHome(cfg.BackupDir); err == nil {
			opts = append(opts, backup.WithBackupDir(dir))
		}
	}
	if fsys != nil {
		opts = append(opts, backup.WithFs(fsys))
	}
	return backup.NewManager(opts...)
}
