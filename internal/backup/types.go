package backup

import (
	"io/fs"
	"time"

	"github.com/thoreinstein/settler/internal/errors"
)

// Manifest format version for forward compatibility.
const ManifestVersion = 1

// Default configuration values.
const (
	// DefaultRetentionCount is the default number of snapshots to retain.
	DefaultRetentionCount = 5

	manifestFile = "manifest.json"
	idLayout     = "20060102T150405.000000000"
)

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no snapshots exist.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates backup file integrity verification failed.
	// This occurs when a file's SHA256 hash doesn't match the manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")
)

// Reason records why a snapshot was taken.
type Reason string

// Snapshot reasons used by the settings store and the CLI.
const (
	ReasonMigration Reason = "migration"
	ReasonReset     Reason = "reset"
	ReasonManual    Reason = "manual"
	ReasonRestore   Reason = "pre-restore"
)

// Manifest contains metadata about a snapshot.
// It is stored as manifest.json in each snapshot directory.
type Manifest struct {
	// Version is the manifest format version.
	Version int `json:"version"`

	// CreatedAt is when the snapshot was taken.
	CreatedAt time.Time `json:"created_at"`

	// Reason says what triggered the snapshot.
	Reason Reason `json:"reason"`

	// DocumentVersion is the settings version found in the file, if known.
	DocumentVersion string `json:"document_version,omitempty"`

	// Files contains metadata for each captured file.
	Files []File `json:"files"`

	// ID is the snapshot identifier, the directory name under the root.
	// Populated when loading from disk but not stored in JSON.
	ID string `json:"-"`
}

// File contains metadata for a single captured file.
type File struct {
	// OriginalPath is the path the file was copied from.
	OriginalPath string `json:"original_path"`

	// Name is the file name within the snapshot directory.
	Name string `json:"name"`

	// SHA256Hash is the hex-encoded SHA256 hash of the file contents.
	SHA256Hash string `json:"sha256_hash"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// Mode is the file's permission bits.
	Mode fs.FileMode `json:"mode"`
}
