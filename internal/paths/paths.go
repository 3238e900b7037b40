package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/thoreinstein/settler/internal/errors"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "settler"

// DefaultSettingsFile is the settings file name used when none is configured.
const DefaultSettingsFile = "settings.json"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrInvalidPath indicates the provided path is malformed or invalid.
	ErrInvalidPath = errors.New("invalid path")
)

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
// On Linux: ~/.local/share
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func DataHome() string {
	return xdg.DataHome
}

// ConfigDir returns settler's own configuration directory.
// Returns: <ConfigHome>/settler/
func ConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// UserDataDir returns the per-user data directory for an application.
// This is where the settings file lives unless a directory is configured.
// Returns: <DataHome>/<app>/
func UserDataDir(app string) string {
	if app == "" {
		app = AppName
	}
	return filepath.Join(DataHome(), app)
}

// BackupDir returns the default directory for settings snapshots.
// Returns: <DataHome>/settler/backups/
func BackupDir() string {
	return filepath.Join(UserDataDir(AppName), "backups")
}

// ExpandHome replaces a leading "~" with the user's home directory.
// Paths without the prefix are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := ResolveHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ValidatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
// Empty paths are valid and mean "use the default".
func ValidatePath(path string) error {
	if path == "" {
		return nil
	}
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}
	return nil
}

// ValidateFileName checks that name is a bare file name with no directory part.
func ValidateFileName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidPath
	}
	if strings.ContainsRune(name, '\x00') || strings.ContainsAny(name, `/\`) {
		return ErrInvalidPath
	}
	return nil
}
