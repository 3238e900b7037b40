package fileutil

import (
	"io"

	"github.com/spf13/afero"

	"github.com/thoreinstein/settler/internal/errors"
)

// MaxFileSize caps how much of a settings or manifest file is read.
const MaxFileSize = 1 << 20

// ErrFileTooLarge marks reads that hit the size cap.
var ErrFileTooLarge = errors.New("file too large")

// ReadFileWithLimit reads path from fs, failing with ErrFileTooLarge past
// MaxFileSize. A missing file yields an error matching fs.ErrNotExist.
func ReadFileWithLimit(fs afero.Fs, path string) ([]byte, error) {
	return ReadFileLimit(fs, path, MaxFileSize)
}

// ReadFileLimit is ReadFileWithLimit with an explicit cap in bytes.
func ReadFileLimit(fs afero.Fs, path string, limit int64) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s is %d bytes, limit %d", path, info.Size(), limit)
	}

	// Stat can lie for special files, so the read is capped too.
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s exceeds %d bytes", path, limit)
	}
	return data, nil
}
