package config

import (
	"strconv"

	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/paths"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates the config format version is unknown.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrOutOfRange indicates a numeric value is outside its allowed range.
	ErrOutOfRange = errors.New("value out of range")
)

// MaxNumSpaces bounds the JSON indent width.
const MaxNumSpaces = 10

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, &FieldError{
			Field: KeyVersion,
			Value: strconv.Itoa(cfg.Version),
			Err:   ErrUnsupportedVersion,
		})
	}

	for _, f := range []struct{ field, path string }{
		{KeySettingsDir, cfg.SettingsDir},
		{KeyBackupDir, cfg.BackupDir},
	} {
		if err := paths.ValidatePath(f.path); err != nil {
			errs = append(errs, &FieldError{Field: f.field, Value: f.path, Err: ErrInvalidPath})
		}
	}

	if cfg.FileName != "" {
		if err := paths.ValidateFileName(cfg.FileName); err != nil {
			errs = append(errs, &FieldError{Field: KeyFileName, Value: cfg.FileName, Err: ErrInvalidPath})
		}
	}

	if cfg.NumSpaces < 0 || cfg.NumSpaces > MaxNumSpaces {
		errs = append(errs, &FieldError{
			Field: KeyNumSpaces,
			Value: strconv.Itoa(cfg.NumSpaces),
			Err:   ErrOutOfRange,
		})
	}

	if cfg.BackupRetention < 0 {
		errs = append(errs, &FieldError{
			Field: KeyBackupRetention,
			Value: strconv.Itoa(cfg.BackupRetention),
			Err:   ErrOutOfRange,
		})
	}

	return errs
}

// FieldError represents an error for a specific config key.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
