// Package backup keeps point-in-time snapshots of the settings file.
//
// The settings store takes a snapshot before a migration result or a
// corruption reset replaces the file on disk, so a bad upgrade or a
// hand-edit gone wrong can be rolled back with "settler backup restore".
//
// # Layout
//
// Each snapshot is a directory named by its UTC creation time:
//
//	<DataHome>/settler/backups/
//	└── 20260123T100712.123456789/
//	    ├── manifest.json
//	    └── settings.json
//
// The manifest records the original path, SHA-256 hash, size and mode of
// every captured file. Restore verifies every hash before writing anything
// back, and writes atomically.
//
// # Retention
//
// After each snapshot the oldest ones beyond the retention count
// ([DefaultRetentionCount] unless configured) are pruned.
//
// # Filesystem
//
// All I/O goes through an afero.Fs so the store and its tests can run
// against an in-memory filesystem.
package backup
