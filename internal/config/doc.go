// Package config loads settler's own tool configuration.
//
// The tool config decides where the settings file lives and how it is
// written; it is distinct from the settings document itself.
//
// # Configuration File
//
// config.yaml (or config.toml when passed explicitly) is searched for in
// $SETTLER_CONFIG_DIR, the current directory and <ConfigHome>/settler:
//
//	version: 1
//	settings_dir: ~/Library/Application Support/myapp  # optional
//	file_name: settings.json
//	atomic_save: true
//	prettify: true
//	num_spaces: 2
//	backup_retention: 5
//	backup_dir: /custom/backups  # optional
//	reset_on_unreachable: false
//
// Every key can be overridden by an environment variable with the SETTLER_
// prefix, e.g. SETTLER_NUM_SPACES=4.
//
// # Validation
//
// [Load] validates automatically and returns the first problem, marked
// with errors.ErrInvalidConfig. [Validate] returns every problem:
//
//	for _, err := range config.Validate(cfg) {
//	    fmt.Println(err)
//	}
package config
