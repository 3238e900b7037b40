// Package errors provides error handling conventions for settler.
//
// It re-exports the wrapping helpers of github.com/cockroachdb/errors,
// defines sentinel errors for the settings store failure taxonomy, and an
// ExitError type for CLI exit code handling.
//
// # Sentinel Errors
//
// The sentinels describe the settings store failure taxonomy:
//
//   - [ErrValidation]: a document failed its schema check
//   - [ErrMigrationUnreachable]: a downgrade step has no down transform
//   - [ErrInvalidVersion]: a version string is not semver
//
// Callers check for specific conditions with [Is]:
//
//	if errors.Is(err, errors.ErrMigrationUnreachable) {
//	    // the on-disk document could not be downgraded
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, etc.)
//   - ExitSystem (2): System-related error (I/O, permissions, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion:
//
//	err := errors.NewUserError(errors.ErrInvalidConfig, "Check your config file")
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
