package doctor

import (
	"context"
	"fmt"

	"github.com/thoreinstein/settler/internal/backup"
	"github.com/thoreinstein/settler/internal/config"
	"github.com/thoreinstein/settler/internal/document"
	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/migrate"
	"github.com/thoreinstein/settler/internal/validator"
)

// Store is the read-only view of a settings store the checks need.
type Store interface {
	Path() string
	Version() string
	Table() *migrate.Table
	Inspect(ctx context.Context) (document.Document, error)
	Check(doc document.Document) *validator.Result
}

// Backups lists the snapshots in a backup directory.
type Backups interface {
	Dir() string
	List() ([]backup.Manifest, error)
}

// ConfigCheck validates settler's own configuration.
type ConfigCheck struct {
	cfg  *config.Config
	path string
}

var _ Check = (*ConfigCheck)(nil)

// NewConfigCheck checks cfg, loaded from path ("" when no file was found).
func NewConfigCheck(cfg *config.Config, path string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, path: path}
}

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string { return "config" }

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string { return "config" }

// Run validates every configuration value.
func (c *ConfigCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category(), Details: map[string]any{}}
	if c.path != "" {
		result.Details["path"] = c.path
	}

	if c.cfg == nil {
		result.Status = SeverityError
		result.Message = "configuration could not be loaded"
		result.FixHint = "run settler config list"
		return result
	}

	errs := config.Validate(c.cfg)
	if len(errs) == 0 {
		result.Status = SeverityPass
		result.Message = "configuration is valid"
		if c.path == "" {
			result.Message = "no config file; using defaults"
		}
		return result
	}

	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	result.Status = SeverityError
	result.Message = fmt.Sprintf("%d invalid configuration value(s): %s", len(errs), msgs[0])
	result.Details["errors"] = msgs
	result.FixHint = "settler config set <key> <value>"
	return result
}

// SettingsFileCheck parses the settings file and validates it against the
// current schema without repairing it.
type SettingsFileCheck struct {
	store Store
}

var _ Check = (*SettingsFileCheck)(nil)

// NewSettingsFileCheck creates a check over store's file.
func NewSettingsFileCheck(store Store) *SettingsFileCheck {
	return &SettingsFileCheck{store: store}
}

// Name returns the unique identifier for this check.
func (c *SettingsFileCheck) Name() string { return "settings-file" }

// Category returns the grouping for this check.
func (c *SettingsFileCheck) Category() string { return "settings" }

// Run reads and validates the settings file.
func (c *SettingsFileCheck) Run(ctx context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.store.Path()},
	}

	doc, err := c.store.Inspect(ctx)
	switch {
	case errors.Is(err, errors.ErrNotFound):
		result.Status = SeverityInfo
		result.Message = "settings file does not exist; init creates it from the defaults"
		return result
	case err != nil:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("settings file is unreadable: %v", err)
		result.FixHint = "settler reset, or settler backup restore"
		return result
	}

	// A file at another version is judged after migration, not here.
	if doc.Version() != c.store.Version() {
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("settings file parses (version %s)", doc.Version())
		return result
	}

	res := c.store.Check(doc)
	if !res.HasErrors() {
		result.Status = SeverityPass
		result.Message = "settings file is valid"
		return result
	}

	var fields []string
	for _, issue := range res.Errors() {
		fields = append(fields, issue.Field)
	}
	result.Status = SeverityError
	result.Message = fmt.Sprintf("settings file has %d invalid field(s)", len(fields))
	result.Details["fields"] = fields
	result.FixHint = "settler check lists the problems; settler init replaces the file with the defaults"
	return result
}

// VersionCheck reports whether the settings file can be migrated to the
// application version.
type VersionCheck struct {
	store              Store
	resetOnUnreachable bool
}

var _ Check = (*VersionCheck)(nil)

// NewVersionCheck creates a migration reachability check.
func NewVersionCheck(store Store, resetOnUnreachable bool) *VersionCheck {
	return &VersionCheck{store: store, resetOnUnreachable: resetOnUnreachable}
}

// Name returns the unique identifier for this check.
func (c *VersionCheck) Name() string { return "version" }

// Category returns the grouping for this check.
func (c *VersionCheck) Category() string { return "settings" }

// Run plans the migration from the file's version.
func (c *VersionCheck) Run(ctx context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"target": c.store.Version()},
	}

	doc, err := c.store.Inspect(ctx)
	if err != nil {
		result.Status = SeverityInfo
		result.Message = "no readable settings file to migrate"
		return result
	}
	result.Details["current"] = doc.Version()

	plan, err := c.store.Table().Plan(doc.Version(), c.store.Version())
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("settings version %q is not a semantic version", doc.Version())
		result.FixHint = "settler init replaces the file with the defaults"
		return result
	}

	if plan.Direction == migrate.None {
		result.Status = SeverityPass
		result.Message = "settings are at version " + plan.To
		return result
	}

	if v, ok := plan.Reachable(); !ok {
		result.Details["missing"] = v
		if c.resetOnUnreachable {
			result.Status = SeverityWarning
			result.Message = fmt.Sprintf("no down migration for %s; init will reset to the defaults", v)
			return result
		}
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot %s from %s to %s: no down migration for %s", plan.Direction, plan.From, plan.To, v)
		result.FixHint = "settler backup restore, or settler reset"
		return result
	}

	result.Status = SeverityInfo
	result.Message = fmt.Sprintf("init will %s from %s to %s (%d step(s))", plan.Direction, plan.From, plan.To, len(plan.Steps))
	return result
}

// BackupCheck reports on the backup directory.
type BackupCheck struct {
	backups Backups
}

var _ Check = (*BackupCheck)(nil)

// NewBackupCheck creates a check over the backups in b.
func NewBackupCheck(b Backups) *BackupCheck {
	return &BackupCheck{backups: b}
}

// Name returns the unique identifier for this check.
func (c *BackupCheck) Name() string { return "backups" }

// Category returns the grouping for this check.
func (c *BackupCheck) Category() string { return "backup" }

// Run lists the backups.
func (c *BackupCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"dir": c.backups.Dir()},
	}

	list, err := c.backups.List()
	if errors.Is(err, backup.ErrNoBackupsFound) {
		err = nil
	}
	if err != nil {
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("cannot list backups: %v", err)
		result.FixHint = "check the backup_dir setting"
		return result
	}

	result.Details["count"] = len(list)
	if len(list) == 0 {
		result.Status = SeverityInfo
		result.Message = "no backups yet"
		return result
	}

	latest := list[0]
	result.Status = SeverityPass
	result.Details["latest"] = latest.ID
	result.Message = fmt.Sprintf("%d backup(s), latest %s (%s)", len(list), latest.ID, latest.Reason)
	return result
}
