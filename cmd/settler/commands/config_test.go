package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/settler/internal/config"
	"github.com/thoreinstein/settler/internal/errors"
)

// loadTestConfig loads a private config.yaml so config set writes there.
func loadTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvConfigDir, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	config.Init()
	_, err := config.Load(path)
	require.NoError(t, err)
	t.Cleanup(config.Init)
	return path
}

func TestConfigGet(t *testing.T) {
	loadTestConfig(t, "num_spaces: 4\n")

	var buf bytes.Buffer
	require.NoError(t, runConfigGet(&buf, config.KeyNumSpaces))
	assert.Equal(t, "4\n", buf.String())

	buf.Reset()
	require.NoError(t, runConfigGet(&buf, config.KeyAtomicSave))
	assert.Equal(t, "true\n", buf.String())
}

func TestConfigGet_UnknownKey(t *testing.T) {
	loadTestConfig(t, "")

	err := runConfigGet(&bytes.Buffer{}, "colour")
	require.Error(t, err)
	var exitErr *errors.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, errors.ExitUser, exitErr.Code)
	assert.Contains(t, exitErr.Suggestion, config.KeyNumSpaces)
}

func TestConfigSet(t *testing.T) {
	path := loadTestConfig(t, "num_spaces: 4\n")

	var buf bytes.Buffer
	require.NoError(t, runConfigSet(&buf, afero.NewOsFs(), config.KeyBackupRetention, "10"))
	assert.Equal(t, "Set backup_retention = 10 in "+path+"\n", buf.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "backup_retention: 10")
	assert.Contains(t, string(data), "num_spaces: 4")
}

func TestConfigSet_InvalidValueReverted(t *testing.T) {
	path := loadTestConfig(t, "num_spaces: 4\n")

	err := runConfigSet(&bytes.Buffer{}, afero.NewOsFs(), config.KeyNumSpaces, "99")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))

	cfg, err := config.Current()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.NumSpaces)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "num_spaces: 4\n", string(data))
}

func TestConfigList(t *testing.T) {
	loadTestConfig(t, "prettify: false\n")

	var buf bytes.Buffer
	require.NoError(t, runConfigList(&buf))

	out := buf.String()
	for _, key := range config.Keys() {
		assert.True(t, strings.Contains(out, key+":"), "missing %s in:\n%s", key, out)
	}
	assert.Contains(t, out, "prettify: false")
}

func TestGenDoc(t *testing.T) {
	t.Run("markdown", func(t *testing.T) {
		dir := t.TempDir()
		captureStdout(t, func() {
			require.NoError(t, runGenDoc(dir, "markdown"))
		})

		data, err := os.ReadFile(filepath.Join(dir, "settler_backup_list.md"))
		require.NoError(t, err)
		assert.Contains(t, string(data), `title: "settler backup list"`)
	})

	t.Run("man", func(t *testing.T) {
		dir := t.TempDir()
		captureStdout(t, func() {
			require.NoError(t, runGenDoc(dir, "man"))
		})

		_, err := os.Stat(filepath.Join(dir, "settler-migrate.1"))
		assert.NoError(t, err)
	})

	t.Run("missing out", func(t *testing.T) {
		assert.Error(t, runGenDoc("", "markdown"))
	})
}
