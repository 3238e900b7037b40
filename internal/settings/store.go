package settings

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/thoreinstein/settler/internal/backup"
	"github.com/thoreinstein/settler/internal/document"
	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/migrate"
	"github.com/thoreinstein/settler/internal/paths"
	"github.com/thoreinstein/settler/internal/schema"
	"github.com/thoreinstein/settler/internal/validator"
	"github.com/thoreinstein/settler/pkg/fileutil"
)

// Document is the untyped form of the settings file.
type Document = document.Document

// Store owns one settings file. It is safe to share between goroutines, but
// concurrent writers race on the file and the last write wins.
type Store[T any] struct {
	cfg     Config
	fs      afero.Fs
	log     *slog.Logger
	version string
	path    string

	defaults   T
	defaultDoc Document
	schema     schema.Schema[T]
	loose      schema.Schema[Document]
	table      *migrate.Table

	backups            *backup.Manager
	resetOnUnreachable bool
}

// New creates a Store. defaults must satisfy s; its encoding (through its
// json tags) is what Reset writes. table may be nil when no migrations are
// registered.
func New[T any](defaults T, s schema.Schema[T], table *migrate.Table, opts ...Option) (*Store[T], error) {
	if s == nil {
		return nil, errors.New("settings schema is required")
	}

	o := options{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.cfg.FileName == "" {
		o.cfg.FileName = paths.DefaultSettingsFile
	}
	if err := paths.ValidateFileName(o.cfg.FileName); err != nil {
		return nil, errors.Wrapf(err, "settings file name %q", o.cfg.FileName)
	}
	if err := paths.ValidatePath(o.cfg.Dir); err != nil {
		return nil, errors.Wrapf(err, "settings directory %q", o.cfg.Dir)
	}
	if o.cfg.Dir == "" {
		o.cfg.Dir = paths.UserDataDir(paths.AppName)
	}
	if o.cfg.NumSpaces < 0 {
		o.cfg.NumSpaces = 0
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if table == nil {
		table = migrate.MustTable()
	}

	defaultDoc, err := document.FromValue(defaults)
	if err != nil {
		return nil, errors.Wrap(err, "encoding default settings")
	}
	if defaultDoc.Version() == "" {
		return nil, errors.New("default settings must carry a version")
	}
	if _, err := s.Parse(defaultDoc.Clone()); err != nil {
		return nil, errors.Wrap(err, "default settings do not satisfy the schema")
	}

	if o.version == "" {
		o.version = defaultDoc.Version()
	}
	if _, err := migrate.Compare(o.version, o.version); err != nil {
		return nil, errors.Wrap(err, "current application version")
	}

	path := filepath.Join(o.cfg.Dir, o.cfg.FileName)
	return &Store[T]{
		cfg:                o.cfg,
		fs:                 o.fs,
		log:                o.logger.With("path", path),
		version:            o.version,
		path:               path,
		defaults:           defaults,
		defaultDoc:         defaultDoc,
		schema:             s,
		loose:              schema.Versioned(),
		table:              table,
		backups:            o.backups,
		resetOnUnreachable: o.resetOnUnreachable,
	}, nil
}

// Path returns the settings file location.
func (s *Store[T]) Path() string {
	return s.path
}

// Version returns the application version documents are migrated to.
func (s *Store[T]) Version() string {
	return s.version
}

// Config returns the effective configuration.
func (s *Store[T]) Config() Config {
	return s.cfg
}

// Table returns the migration table.
func (s *Store[T]) Table() *migrate.Table {
	return s.table
}

// Defaults returns a fresh copy of the default settings.
func (s *Store[T]) Defaults() T {
	v, err := s.schema.Parse(s.defaultDoc.Clone())
	if err != nil {
		// Checked in New.
		return s.defaults
	}
	return v
}

// Check validates doc against the typed schema without writing anything.
func (s *Store[T]) Check(doc Document) *validator.Result {
	return s.schema.Check(doc)
}

// Init reconciles the file on disk with the current application version.
//
// A missing file is created from the defaults. A file that is not JSON or
// lacks a version is replaced by the defaults without being migrated.
// Otherwise the document is migrated; a result that fails the typed schema
// is replaced by the defaults, and a valid one is written back.
//
// When a downgrade needs a down transform that was never registered, the
// file is left untouched and the returned error matches
// errors.ErrMigrationUnreachable, unless WithResetOnUnreachable was set.
func (s *Store[T]) Init(ctx context.Context) error {
	doc, err := s.load(ctx)
	if err != nil {
		return err
	}

	from := doc.Version()
	migrated, err := migrate.Migrate(doc, s.version, s.table)
	switch {
	case errors.Is(err, errors.ErrMigrationUnreachable):
		s.log.Error("cannot reconcile settings with application version",
			"from", from, "to", s.version, "error", err)
		if s.resetOnUnreachable {
			s.snapshot(backup.ReasonReset, from)
			return s.Reset(ctx)
		}
		return errors.Wrapf(errors.Mark(err, errors.ErrMigrationUnreachable),
			"migrating settings from %s to %s", from, s.version)
	case errors.Is(err, errors.ErrInvalidVersion):
		return s.recover(ctx, "settings version is invalid, resetting to defaults", from, err)
	case err != nil:
		return errors.Wrap(err, "migrating settings")
	}

	typed, err := s.schema.Parse(migrated)
	if err != nil {
		return s.recover(ctx, "settings are invalid, resetting to defaults", from, err)
	}

	out, err := document.FromValue(typed)
	if err != nil {
		return errors.Wrap(err, "encoding settings")
	}

	if from != s.version {
		s.log.Info("migrated settings", "from", from, "to", s.version)
		if s.backups != nil {
			if err := s.backups.EnsureBackedUp(backup.ReasonMigration, from, s.path); err != nil {
				s.log.Warn("could not back up settings before migration", "error", err)
			}
		}
	}

	_, err = s.persist(ctx, out)
	return err
}

// Load reads the settings file and decodes it. A document that fails the
// typed schema is replaced by the defaults, which are returned instead.
func (s *Store[T]) Load(ctx context.Context) (T, error) {
	var zero T

	doc, err := s.load(ctx)
	if err != nil {
		return zero, err
	}

	typed, err := s.schema.Parse(doc)
	if err != nil {
		if err := s.recover(ctx, "settings file is invalid, resetting to defaults", doc.Version(), err); err != nil {
			return zero, err
		}
		return s.Defaults(), nil
	}
	return typed, nil
}

// LoadDocument is Load returning the untyped document as persisted.
func (s *Store[T]) LoadDocument(ctx context.Context) (Document, error) {
	typed, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return document.FromValue(typed)
}

// Set validates v and writes it. It reports whether v was accepted; an
// invalid value is logged and discarded, leaving the file as it was, and
// is not an error.
func (s *Store[T]) Set(ctx context.Context, v T) (bool, error) {
	doc, err := document.FromValue(v)
	if err != nil {
		return false, errors.Wrap(err, "encoding settings")
	}
	return s.SetDocument(ctx, doc)
}

// SetDocument is Set for an untyped document.
func (s *Store[T]) SetDocument(ctx context.Context, doc Document) (bool, error) {
	_, ok, err := s.write(ctx, doc)
	return ok, err
}

// Reset writes the default settings, replacing whatever is on disk.
func (s *Store[T]) Reset(ctx context.Context) error {
	_, err := s.persist(ctx, s.defaultDoc.Clone())
	return err
}

// write validates doc against the typed schema and persists its
// normalized form. It reports whether the write was accepted.
func (s *Store[T]) write(ctx context.Context, doc Document) (Document, bool, error) {
	typed, err := s.schema.Parse(doc)
	if err != nil {
		s.log.Warn("settings are invalid, not saving", "error", err)
		return nil, false, nil
	}

	out, err := document.FromValue(typed)
	if err != nil {
		return nil, false, errors.Wrap(err, "encoding settings")
	}

	ok, err := s.persist(ctx, out)
	if !ok || err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Inspect reads the document on disk without creating, migrating or
// repairing it. A missing file matches errors.ErrNotFound.
func (s *Store[T]) Inspect(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := fileutil.ReadFileWithLimit(s.fs, s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrNotFound), "settings file %s", s.path)
	case err != nil:
		return nil, errors.Wrap(err, "reading settings")
	}
	return document.Parse(data)
}

// load returns the document on disk, creating it from the defaults when
// the file is missing and replacing it when it is unusable.
func (s *Store[T]) load(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := fileutil.ReadFileWithLimit(s.fs, s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.log.Info("creating settings file from defaults")
		if err := s.Reset(ctx); err != nil {
			return nil, err
		}
		return s.defaultDoc.Clone(), nil
	case errors.Is(err, fileutil.ErrFileTooLarge):
		if err := s.recover(ctx, "settings file is too large, resetting to defaults", "", err); err != nil {
			return nil, err
		}
		return s.defaultDoc.Clone(), nil
	case err != nil:
		return nil, errors.Wrap(err, "reading settings")
	}

	doc, err := document.Parse(data)
	if err == nil {
		doc, err = s.loose.Parse(doc)
	}
	if err != nil {
		if err := s.recover(ctx, "settings file is invalid, resetting to defaults", "", err); err != nil {
			return nil, err
		}
		return s.defaultDoc.Clone(), nil
	}

	s.log.Debug("loaded settings", "version", doc.Version())
	return doc, nil
}

// recover logs why the file is being replaced, snapshots it and resets.
func (s *Store[T]) recover(ctx context.Context, msg, version string, cause error) error {
	s.log.Warn(msg, "error", cause)
	s.snapshot(backup.ReasonReset, version)
	return s.Reset(ctx)
}

func (s *Store[T]) snapshot(reason backup.Reason, version string) {
	if s.backups == nil {
		return
	}
	if _, err := s.backups.Backup(reason, version, s.path); err != nil && !errors.Is(err, backup.ErrNoBackupsFound) {
		s.log.Warn("could not back up settings", "reason", reason, "error", err)
	}
}

// persist runs the loose check and writes doc. It reports false when the
// document was rejected.
func (s *Store[T]) persist(ctx context.Context, doc Document) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	checked, err := s.loose.Parse(doc)
	if err != nil {
		s.log.Warn("settings are invalid, not saving", "error", err)
		return false, nil
	}

	data, err := fileutil.MarshalJSON(checked, s.cfg.Prettify, s.cfg.NumSpaces)
	if err != nil {
		return false, errors.Wrap(err, "encoding settings")
	}

	err = fileutil.WriteFile(s.fs, s.path, data, fileutil.WriteOptions{
		Atomic: s.cfg.AtomicSave,
		Perm:   fileutil.DefaultFilePerm,
	})
	if err != nil {
		return false, errors.Wrap(err, "saving settings")
	}

	s.log.Debug("saved settings", "version", checked.Version(), "bytes", len(data))
	return true, nil
}
