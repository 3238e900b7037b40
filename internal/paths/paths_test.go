package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thoreinstein/settler/internal/errors"
)

func TestResolveHome(t *testing.T) {
	got, err := ResolveHome()
	want, _ := os.UserHomeDir()

	if err != nil {
		if !errors.Is(err, ErrHomeDirNotFound) {
			t.Errorf("unexpected error type: %v", err)
		}
	} else if got != want {
		t.Errorf("ResolveHome() = %q, want %q", got, want)
	}
}

func TestConfigHome(t *testing.T) {
	got := ConfigHome()
	if got == "" {
		t.Error("ConfigHome() returned empty string")
	}
	if !filepath.IsAbs(got) {
		t.Errorf("ConfigHome() = %q, want absolute path", got)
	}
}

func TestUserDataDir(t *testing.T) {
	tests := []struct {
		name string
		app  string
		want string
	}{
		{"named app", "photoview", filepath.Join(DataHome(), "photoview")},
		{"empty falls back to settler", "", filepath.Join(DataHome(), AppName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserDataDir(tt.app); got != tt.want {
				t.Errorf("UserDataDir(%q) = %q, want %q", tt.app, got, tt.want)
			}
		})
	}
}

func TestBackupDir(t *testing.T) {
	got := BackupDir()
	if !strings.HasSuffix(got, filepath.Join(AppName, "backups")) {
		t.Errorf("BackupDir() = %q, want suffix %q", got, filepath.Join(AppName, "backups"))
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	if err := EnsureDir(dir, 0); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.IsDir() {
		t.Error("EnsureDir() did not create a directory")
	}
	if err := EnsureDir(dir, 0); err != nil {
		t.Errorf("EnsureDir() should be idempotent, got %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/settings", filepath.Join(home, "settings")},
		{"/abs/path", "/abs/path"},
		{"rel/~/path", "rel/~/path"},
	}
	for _, tt := range tests {
		got, err := ExpandHome(tt.in)
		if err != nil {
			t.Fatalf("ExpandHome(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"", false},
		{"/tmp/settings", false},
		{".", true},
		{"bad\x00path", true},
	}
	for _, tt := range tests {
		if err := ValidatePath(tt.path); (err != nil) != tt.wantErr {
			t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"settings.json", false},
		{"", true},
		{"..", true},
		{"dir/settings.json", true},
		{`dir\settings.json`, true},
	}
	for _, tt := range tests {
		if err := ValidateFileName(tt.name); (err != nil) != tt.wantErr {
			t.Errorf("ValidateFileName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
