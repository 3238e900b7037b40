package logging

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/thoreinstein/settler/internal/errors"
)

// ColorMode selects when the text handler colours its output.
type ColorMode string

const (
	// ColorAuto colours terminals unless NO_COLOR or TERM=dumb say otherwise.
	ColorAuto ColorMode = "auto"
	// ColorAlways colours regardless of the writer.
	ColorAlways ColorMode = "always"
	// ColorNever never colours.
	ColorNever ColorMode = "never"
)

// ParseColorMode maps a --color value to a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways, ColorNever:
		return m, nil
	default:
		return "", errors.Newf("unknown color mode %q (valid: auto, always, never)", s)
	}
}

// IsTTY reports whether w is a terminal. Any writer with an Fd method
// qualifies, not just *os.File.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// UseColor reports whether output to w should be coloured under mode.
// In auto mode NO_COLOR (https://no-color.org) and TERM=dumb turn colour
// off and CLICOLOR_FORCE turns it on for non-terminals.
func UseColor(w io.Writer, mode ColorMode) bool {
	return useColor(mode, IsTTY(w))
}

func useColor(mode ColorMode, isTTY bool) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	if v := os.Getenv("CLICOLOR_FORCE"); v != "" && v != "0" {
		return true
	}
	return isTTY
}
