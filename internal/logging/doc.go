// Package logging provides structured logging for settler using slog.
//
// The package supports both text and JSON output formats, configurable log
// levels, and helpers for testing. All loggers are based on the standard
// library's [log/slog] package.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("settings loaded", "path", store.Path())
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
//
// # Colour and Fan-out
//
// Text output is coloured when [UseColor] allows it for the configured
// [ColorMode]; NO_COLOR and TERM=dumb turn it off in auto mode. [Tee] sends
// each record to several handlers, which is how --log-file keeps a JSON copy
// of everything printed to the terminal.
//
// # Quiet Mode
//
// Use [NewDiscard] when log output should be suppressed entirely:
//
//	logger := logging.NewDiscard()
package logging
