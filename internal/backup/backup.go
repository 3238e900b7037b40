package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/paths"
	"github.com/thoreinstein/settler/pkg/fileutil"
)

// Manager creates, lists, restores and prunes settings snapshots.
type Manager struct {
	fs             afero.Fs
	rootDir        string
	retentionCount int
	now            func() time.Time

	mu   sync.Mutex
	once map[string]bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root backup directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		if dir != "" {
			m.rootDir = dir
		}
	}
}

// WithRetentionCount sets the number of snapshots to retain.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// WithFs sets the filesystem snapshots are read from and written to.
func WithFs(fsys afero.Fs) Option {
	return func(m *Manager) {
		if fsys != nil {
			m.fs = fsys
		}
	}
}

// NewManager creates a new backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		fs:             afero.NewOsFs(),
		rootDir:        paths.BackupDir(),
		retentionCount: DefaultRetentionCount,
		now:            time.Now,
		once:           make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the root snapshot directory.
func (m *Manager) Dir() string {
	return m.rootDir
}

// Backup copies the given files into a new snapshot directory and writes
// its manifest. Missing files are skipped; if none exist no snapshot is
// created and ErrNoBackupsFound is returned. Snapshots beyond the retention
// count are pruned afterwards.
func (m *Manager) Backup(reason Reason, docVersion string, files ...string) (*Manifest, error) {
	manifest, err := m.snapshot(reason, docVersion, files)
	if err != nil {
		return nil, err
	}
	if err := m.Prune(m.retentionCount); err != nil {
		return manifest, errors.Wrap(err, "pruning old backups")
	}
	return manifest, nil
}

func (m *Manager) snapshot(reason Reason, docVersion string, files []string) (*Manifest, error) {
	if len(files) == 0 {
		return nil, errors.New("at least one path is required")
	}

	id, dir, err := m.newSnapshotDir()
	if err != nil {
		return nil, err
	}

	var captured []File
	for _, p := range files {
		f, err := m.copyIn(p, dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			_ = m.fs.RemoveAll(dir)
			return nil, errors.Wrapf(err, "backing up %s", p)
		}
		captured = append(captured, *f)
	}

	if len(captured) == 0 {
		_ = m.fs.RemoveAll(dir)
		return nil, errors.Wrap(ErrNoBackupsFound, "no files to back up")
	}

	manifest := &Manifest{
		Version:         ManifestVersion,
		CreatedAt:       m.now().UTC(),
		Reason:          reason,
		DocumentVersion: docVersion,
		Files:           captured,
		ID:              id,
	}

	if err := fileutil.AtomicWriteJSON(m.fs, filepath.Join(dir, manifestFile), manifest); err != nil {
		_ = m.fs.RemoveAll(dir)
		return nil, errors.Wrap(err, "writing manifest")
	}

	return manifest, nil
}

// EnsureBackedUp snapshots path at most once per Manager. Later calls for
// the same path are no-ops; a failed attempt may be retried.
func (m *Manager) EnsureBackedUp(reason Reason, docVersion, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.once[path] {
		return nil
	}

	if _, err := m.Backup(reason, docVersion, path); err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return errors.Wrapf(err, "creating backup of %s", path)
	}
	m.once[path] = true
	return nil
}

// newSnapshotDir creates a uniquely named snapshot directory. IDs sort
// chronologically; a numeric suffix separates snapshots taken in the same
// clock tick.
func (m *Manager) newSnapshotDir() (string, string, error) {
	base := m.now().UTC().Format(idLayout)
	for i := 0; i < 100; i++ {
		id := base
		if i > 0 {
			id = base + "-" + strconv.Itoa(i)
		}
		dir := filepath.Join(m.rootDir, id)
		if _, err := m.fs.Stat(dir); err == nil {
			continue
		}
		if err := m.fs.MkdirAll(dir, paths.DefaultDirPerm); err != nil {
			return "", "", errors.Wrap(err, "creating backup directory")
		}
		return id, dir, nil
	}
	return "", "", errors.Newf("could not allocate backup id for %s", base)
}

func (m *Manager) copyIn(src, dir string) (*File, error) {
	info, err := m.fs.Stat(src)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errors.Newf("%s is a directory", src)
	}

	name := filepath.Base(src)
	hash, size, err := copyFile(m.fs, src, filepath.Join(dir, name), info.Mode().Perm())
	if err != nil {
		return nil, err
	}

	return &File{
		OriginalPath: src,
		Name:         name,
		SHA256Hash:   hash,
		Size:         size,
		Mode:         info.Mode().Perm(),
	}, nil
}

// Restore copies every file of a snapshot back to its original location,
// verifying hashes first. Nothing is written if any file is corrupted.
//
// The files about to be overwritten are snapshotted first with
// ReasonRestore; saved is that snapshot, or nil when none of them existed.
// docVersion is recorded in it.
func (m *Manager) Restore(id, docVersion string) (restored, saved *Manifest, err error) {
	manifest, err := m.Get(id)
	if err != nil {
		return nil, nil, err
	}

	dir := filepath.Join(m.rootDir, id)
	contents := make([][]byte, len(manifest.Files))
	targets := make([]string, len(manifest.Files))
	for i, f := range manifest.Files {
		data, err := afero.ReadFile(m.fs, filepath.Join(dir, f.Name))
		if err != nil {
			return nil, nil, errors.Wrapf(err, "reading backup file %s", f.Name)
		}
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != f.SHA256Hash {
			return nil, nil, errors.Wrapf(ErrBackupCorrupted, "file %s hash mismatch", f.Name)
		}
		contents[i] = data
		targets[i] = f.OriginalPath
	}

	saved, err = m.snapshot(ReasonRestore, docVersion, targets)
	if err != nil && !errors.Is(err, ErrNoBackupsFound) {
		return nil, nil, errors.Wrap(err, "backing up current files")
	}

	for i, f := range manifest.Files {
		if err := fileutil.WriteFile(m.fs, f.OriginalPath, contents[i], fileutil.WriteOptions{Atomic: true, Perm: f.Mode}); err != nil {
			return nil, saved, errors.Wrapf(err, "restoring %s", f.OriginalPath)
		}
	}

	if err := m.Prune(m.retentionCount); err != nil {
		return manifest, saved, errors.Wrap(err, "pruning old backups")
	}
	return manifest, saved, nil
}

// List returns all snapshots sorted newest first.
func (m *Manager) List() ([]Manifest, error) {
	entries, err := afero.ReadDir(m.fs, m.rootDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(entry.Name())
		if err != nil {
			// Skip directories without a readable manifest
			continue
		}
		manifests = append(manifests, *manifest)
	}

	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(b.ID, a.ID)
	})

	return manifests, nil
}

// Latest returns the newest snapshot.
func (m *Manager) Latest() (*Manifest, error) {
	manifests, err := m.List()
	if err != nil {
		return nil, err
	}
	return &manifests[0], nil
}

// Prune removes snapshots beyond the newest keep.
func (m *Manager) Prune(keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	manifests, err := m.List()
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return err
	}

	for i := keep; i < len(manifests); i++ {
		if err := m.fs.RemoveAll(filepath.Join(m.rootDir, manifests[i].ID)); err != nil {
			return errors.Wrapf(err, "removing backup %s", manifests[i].ID)
		}
	}

	return nil
}

// Get returns the manifest for a specific snapshot.
func (m *Manager) Get(id string) (*Manifest, error) {
	if id == "" {
		return nil, errors.New("backup ID is required")
	}
	if err := paths.ValidateFileName(id); err != nil {
		return nil, errors.Wrapf(err, "backup ID %q", id)
	}

	data, err := fileutil.ReadFileWithLimit(m.fs, filepath.Join(m.rootDir, id, manifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s not found", id)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}

	manifest.ID = id
	return &manifest, nil
}

// compareIDs orders IDs sharing a timestamp by their numeric suffix.
func compareIDs(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// copyFile copies src to dst, returning the SHA256 hash and size.
func copyFile(fsys afero.Fs, src, dst string, mode fs.FileMode) (hash string, size int64, err error) {
	srcFile, err := fsys.Open(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	dstFile, err := fsys.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return "", 0, errors.Wrap(err, "creating destination file")
	}

	h := sha256.New()
	size, err = io.Copy(io.MultiWriter(dstFile, h), srcFile)
	if err != nil {
		dstFile.Close()
		return "", 0, errors.Wrap(err, "copying file")
	}

	if err := dstFile.Close(); err != nil {
		return "", 0, errors.Wrap(err, "closing destination file")
	}

	return hex.EncodeToString(h.Sum(nil)), size, nil
}
