package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/logging"
)

// resetLoggingFlags restores the global logging flags and default logger
// when the test ends.
func resetLoggingFlags(t *testing.T) *cobra.Command {
	t.Helper()

	origVerbosity, origQuiet, origFormat, origFile, origColor := verbosity, quiet, logFormat, logFile, colorMode
	origDefault := slog.Default()
	t.Cleanup(func() {
		verbosity, quiet, logFormat, logFile, colorMode = origVerbosity, origQuiet, origFormat, origFile, origColor
		closeLogFile()
		slog.SetDefault(origDefault)
	})
	verbosity, quiet, logFormat, logFile, colorMode = 0, false, "text", "", "auto"
	t.Setenv(EnvDebug, "")
	os.Unsetenv(EnvDebug)

	c := &cobra.Command{}
	c.SetErr(io.Discard)
	return c
}

func TestSetupLogging_VerbosityFlags(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel slog.Level
	}{
		{"default (0)", 0, slog.LevelWarn},
		{"verbose (1)", 1, slog.LevelInfo},
		{"debug (2)", 2, slog.LevelDebug},
		{"trace (3)", 3, logging.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := resetLoggingFlags(t)
			verbosity = tt.verbosity
			if err := setupLogging(c); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > logging.LevelTrace {
				shouldBeDisabled := tt.wantLevel - 4
				if logger.Enabled(t.Context(), shouldBeDisabled) {
					t.Errorf("expected level %v to be disabled", shouldBeDisabled)
				}
			}
			if logging.FromContext(c.Context()) != logger {
				t.Error("expected the command context to carry the configured logger")
			}
		})
	}
}

func TestSetupLogging_EnvVar(t *testing.T) {
	tests := []struct {
		name      string
		envVal    string
		wantLevel slog.Level
	}{
		{"SETTLER_DEBUG=1", "1", slog.LevelDebug},
		{"SETTLER_DEBUG=true", "true", slog.LevelDebug},
		{"SETTLER_DEBUG=2", "2", logging.LevelTrace},
		{"SETTLER_DEBUG=0", "0", slog.LevelWarn},
		{"SETTLER_DEBUG=unknown", "foo", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := resetLoggingFlags(t)
			t.Setenv(EnvDebug, tt.envVal)

			if err := setupLogging(c); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel == slog.LevelWarn && logger.Enabled(t.Context(), slog.LevelInfo) {
				t.Error("expected Info level to be disabled")
			}
		})
	}
}

func TestSetupLogging_FlagPrecedence(t *testing.T) {
	c := resetLoggingFlags(t)
	t.Setenv(EnvDebug, "2")
	verbosity = 1

	if err := setupLogging(c); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}

	logger := slog.Default()
	if !logger.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("expected Info level to be enabled")
	}
	if logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("expected Debug level to be disabled (flag should override env)")
	}
}

func TestSetupLogging_Quiet(t *testing.T) {
	c := resetLoggingFlags(t)
	quiet = true

	if err := setupLogging(c); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}
	if slog.Default().Enabled(t.Context(), slog.LevelWarn) {
		t.Error("expected Warn level to be disabled in quiet mode")
	}
	if !slog.Default().Enabled(t.Context(), slog.LevelError) {
		t.Error("expected Error level to be enabled in quiet mode")
	}
}

func TestSetupLogging_QuietAndVerbose(t *testing.T) {
	c := resetLoggingFlags(t)
	quiet = true
	verbosity = 1

	err := setupLogging(c)
	if err == nil {
		t.Fatal("expected an error for --quiet with --verbose")
	}
	var exitErr *errors.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != errors.ExitUser {
		t.Errorf("expected a user error, got %v", err)
	}
}

func TestSetupLogging_BadFormat(t *testing.T) {
	c := resetLoggingFlags(t)
	logFormat = "xml"

	if err := setupLogging(c); err == nil {
		t.Fatal("expected an error for an unknown log format")
	}
}

func TestSetupLogging_BadColor(t *testing.T) {
	c := resetLoggingFlags(t)
	colorMode = "rainbow"

	if err := setupLogging(c); err == nil {
		t.Fatal("expected an error for an unknown color mode")
	}
}

func TestSetupLogging_LogFile(t *testing.T) {
	c := resetLoggingFlags(t)
	logFile = filepath.Join(t.TempDir(), "logs", "settler.log")

	if err := setupLogging(c); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}
	slog.Warn("written to file", "key", "value")
	closeLogFile()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"written to file"`) {
		t.Errorf("log file = %q, want a JSON record", data)
	}
}
