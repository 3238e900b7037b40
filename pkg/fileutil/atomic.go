// Package fileutil provides file system utilities including atomic write operations.
package fileutil

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/settler/internal/errors"
)

// DefaultFilePerm is applied to files written without an explicit mode.
const DefaultFilePerm os.FileMode = 0o600

// DefaultDirPerm is applied to parent directories created on write.
const DefaultDirPerm os.FileMode = 0o700

// WriteOptions controls how WriteFile persists data.
type WriteOptions struct {
	// Atomic writes through a temp file in the target directory followed by a
	// rename. Readers never observe a partially written file.
	Atomic bool

	// Perm is the mode of the written file. Zero means DefaultFilePerm.
	Perm os.FileMode
}

// WriteFile writes data to path on fs, creating parent directories as needed.
//
// With opts.Atomic the write goes through AtomicWriteFile; on failure the
// original file is left untouched. Without it the file is truncated and
// written in place, which is what in-memory filesystems in tests want.
func WriteFile(fs afero.Fs, path string, data []byte, opts WriteOptions) error {
	perm := opts.Perm
	if perm == 0 {
		perm = DefaultFilePerm
	}

	if err := fs.MkdirAll(filepath.Dir(path), DefaultDirPerm); err != nil {
		return errors.Wrap(err, "creating parent directory")
	}

	if opts.Atomic {
		return AtomicWriteFile(fs, path, data, perm)
	}

	if err := afero.WriteFile(fs, path, data, perm); err != nil {
		return errors.Wrap(err, "writing file")
	}
	return nil
}

// AtomicWriteFile writes data to a file atomically using a temp file + rename pattern.
// This ensures interrupted writes leave the original file intact.
//
// The caller is responsible for ensuring the parent directory exists.
// Permissions are applied to the final file via the perm parameter.
func AtomicWriteFile(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Create temp file in same directory for atomic rename (same filesystem required)
	tmp, err := afero.TempFile(fs, dir, ".settler-atomic-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	defer func() {
		// Only remove if rename failed (file still exists)
		if _, statErr := fs.Stat(tmpName); statErr == nil {
			_ = fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "syncing temp file")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := fs.Chmod(tmpName, perm); err != nil {
		return errors.Wrap(err, "setting file permissions")
	}

	if err := fs.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}

	return nil
}

// AtomicWriteJSON writes v as 2-space indented JSON to path atomically.
// A trailing newline is appended for POSIX compliance.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteJSON(fs afero.Fs, path string, v any) error {
	data, err := MarshalJSON(v, true, 2)
	if err != nil {
		return err
	}
	return AtomicWriteFile(fs, path, data, DefaultFilePerm)
}

// AtomicWriteYAML writes v as YAML to path atomically.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteYAML(fs afero.Fs, path string, v any) (err error) {
	// yaml.Marshal panics on unmarshalable types; recover and return error
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling YAML")
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	return AtomicWriteFile(fs, path, data, DefaultFilePerm)
}

// AtomicWriteTOML writes v as TOML to path atomically.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteTOML(fs afero.Fs, path string, v any) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling TOML")
	}
	return AtomicWriteFile(fs, path, data, DefaultFilePerm)
}
