// Package paths provides cross-platform path resolution for settler.
//
// The package wraps github.com/adrg/xdg for XDG Base Directory compliance.
// Settings files default to the per-user data directory:
//
//	paths.UserDataDir("photoview") // ~/.local/share/photoview on Linux
//
// settler's own configuration lives under [ConfigDir] and snapshots taken
// before migrations under [BackupDir].
package paths
