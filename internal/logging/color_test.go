package logging

import (
	"os"
	"testing"
)

func TestUseColor(t *testing.T) {
	tests := []struct {
		name  string
		mode  ColorMode
		env   map[string]string
		isTTY bool
		want  bool
	}{
		{name: "auto on a terminal", mode: ColorAuto, isTTY: true, want: true},
		{name: "auto off a terminal", mode: ColorAuto, isTTY: false, want: false},
		{name: "NO_COLOR prevents color", mode: ColorAuto, env: map[string]string{"NO_COLOR": "1"}, isTTY: true, want: false},
		{name: "empty NO_COLOR still counts", mode: ColorAuto, env: map[string]string{"NO_COLOR": ""}, isTTY: true, want: false},
		{name: "TERM=dumb prevents color", mode: ColorAuto, env: map[string]string{"TERM": "dumb"}, isTTY: true, want: false},
		{name: "CLICOLOR_FORCE colours pipes", mode: ColorAuto, env: map[string]string{"CLICOLOR_FORCE": "1"}, want: true},
		{name: "CLICOLOR_FORCE=0 ignored", mode: ColorAuto, env: map[string]string{"CLICOLOR_FORCE": "0"}, want: false},
		{name: "always beats NO_COLOR", mode: ColorAlways, env: map[string]string{"NO_COLOR": "1"}, want: true},
		{name: "never on a terminal", mode: ColorNever, isTTY: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"NO_COLOR", "TERM", "CLICOLOR_FORCE"} {
				t.Setenv(k, "")
				os.Unsetenv(k)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if got := useColor(tt.mode, tt.isTTY); got != tt.want {
				t.Errorf("useColor(%q, %v) = %v, want %v", tt.mode, tt.isTTY, got, tt.want)
			}
		})
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{"", ColorAuto, false},
		{"auto", ColorAuto, false},
		{"Always", ColorAlways, false},
		{" never ", ColorNever, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := ParseColorMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColorMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColorMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsTTY_NonFile(t *testing.T) {
	var w mockWriter
	if IsTTY(&w) {
		t.Error("IsTTY should return false for a writer without Fd")
	}
}

type mockWriter struct{}

func (m *mockWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}
