package backup

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/settler/internal/errors"
)

const settingsPath = "/data/settler/settings.json"

func newTestManager(t *testing.T, opts ...Option) (*Manager, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, settingsPath, []byte(`{"version":"0.1.0"}`), 0o600))

	m := NewManager(append([]Option{WithFs(fsys), WithBackupDir("/backups")}, opts...)...)
	return m, fsys
}

func TestBackup_CreatesManifest(t *testing.T) {
	m, fsys := newTestManager(t)

	manifest, err := m.Backup(ReasonMigration, "0.1.0", settingsPath)
	require.NoError(t, err)

	assert.Equal(t, ManifestVersion, manifest.Version)
	assert.Equal(t, ReasonMigration, manifest.Reason)
	assert.Equal(t, "0.1.0", manifest.DocumentVersion)
	require.Len(t, manifest.Files, 1)
	assert.Equal(t, "settings.json", manifest.Files[0].Name)
	assert.Equal(t, int64(len(`{"version":"0.1.0"}`)), manifest.Files[0].Size)

	copied, err := afero.ReadFile(fsys, filepath.Join("/backups", manifest.ID, "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"version":"0.1.0"}`, string(copied))

	loaded, err := m.Get(manifest.ID)
	require.NoError(t, err)
	assert.Equal(t, manifest.Files, loaded.Files)
}

func TestBackup_Collision(t *testing.T) {
	fixed := time.Date(2026, 1, 23, 10, 7, 12, 0, time.UTC)
	m, _ := newTestManager(t)
	m.now = func() time.Time { return fixed }

	first, err := m.Backup(ReasonManual, "", settingsPath)
	require.NoError(t, err)
	second, err := m.Backup(ReasonManual, "", settingsPath)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	latest, err := m.Latest()
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestBackup_MissingFile(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Backup(ReasonReset, "", "/nope/settings.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoBackupsFound))

	_, err = m.List()
	assert.True(t, errors.Is(err, ErrNoBackupsFound))
}

func TestRestore(t *testing.T) {
	m, fsys := newTestManager(t)

	manifest, err := m.Backup(ReasonMigration, "0.1.0", settingsPath)
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fsys, settingsPath, []byte(`{"version":"9.9.9"}`), 0o600))

	restored, saved, err := m.Restore(manifest.ID, "9.9.9")
	require.NoError(t, err)
	assert.Equal(t, manifest.ID, restored.ID)

	data, err := afero.ReadFile(fsys, settingsPath)
	require.NoError(t, err)
	assert.Equal(t, `{"version":"0.1.0"}`, string(data))

	require.NotNil(t, saved)
	assert.Equal(t, ReasonRestore, saved.Reason)
	assert.Equal(t, "9.9.9", saved.DocumentVersion)
	prior, err := afero.ReadFile(fsys, filepath.Join("/backups", saved.ID, "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"version":"9.9.9"}`, string(prior))
}

func TestRestore_OldestWithFullRetention(t *testing.T) {
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m, fsys := newTestManager(t, WithRetentionCount(2))
	m.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	oldest, err := m.Backup(ReasonManual, "0.1.0", settingsPath)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fsys, settingsPath, []byte(`{"version":"0.2.0"}`), 0o600))
	_, err = m.Backup(ReasonManual, "0.2.0", settingsPath)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fsys, settingsPath, []byte(`{"version":"0.3.0"}`), 0o600))

	_, saved, err := m.Restore(oldest.ID, "0.3.0")
	require.NoError(t, err)

	data, err := afero.ReadFile(fsys, settingsPath)
	require.NoError(t, err)
	assert.Equal(t, `{"version":"0.1.0"}`, string(data))

	manifests, err := m.List()
	require.NoError(t, err)
	assert.Len(t, manifests, 2)
	assert.Equal(t, saved.ID, manifests[0].ID)
}

func TestRestore_NothingToSave(t *testing.T) {
	m, fsys := newTestManager(t)

	manifest, err := m.Backup(ReasonManual, "0.1.0", settingsPath)
	require.NoError(t, err)
	require.NoError(t, fsys.Remove(settingsPath))

	_, saved, err := m.Restore(manifest.ID, "")
	require.NoError(t, err)
	assert.Nil(t, saved)

	exists, err := afero.Exists(fsys, settingsPath)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRestore_Corrupted(t *testing.T) {
	m, fsys := newTestManager(t)

	manifest, err := m.Backup(ReasonMigration, "0.1.0", settingsPath)
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fsys, filepath.Join("/backups", manifest.ID, "settings.json"), []byte("tampered"), 0o600))
	require.NoError(t, afero.WriteFile(fsys, settingsPath, []byte(`{"version":"9.9.9"}`), 0o600))

	_, _, err = m.Restore(manifest.ID, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackupCorrupted))

	data, err := afero.ReadFile(fsys, settingsPath)
	require.NoError(t, err)
	assert.Equal(t, `{"version":"9.9.9"}`, string(data), "corrupted restore must not touch the target")
}

func TestPrune(t *testing.T) {
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m, _ := newTestManager(t, WithRetentionCount(10))
	m.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	var ids []string
	for range 4 {
		manifest, err := m.Backup(ReasonManual, "", settingsPath)
		require.NoError(t, err)
		ids = append(ids, manifest.ID)
	}

	require.NoError(t, m.Prune(2))

	manifests, err := m.List()
	require.NoError(t, err)
	require.Len(t, manifests, 2)
	assert.Equal(t, ids[3], manifests[0].ID)
	assert.Equal(t, ids[2], manifests[1].ID)

	assert.Error(t, m.Prune(-1))
}

func TestBackup_RetentionApplied(t *testing.T) {
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m, _ := newTestManager(t, WithRetentionCount(2))
	m.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}

	for range 3 {
		_, err := m.Backup(ReasonManual, "", settingsPath)
		require.NoError(t, err)
	}

	manifests, err := m.List()
	require.NoError(t, err)
	assert.Len(t, manifests, 2)
}

func TestEnsureBackedUp_Once(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.EnsureBackedUp(ReasonMigration, "0.1.0", settingsPath))
	require.NoError(t, m.EnsureBackedUp(ReasonMigration, "0.1.0", settingsPath))

	manifests, err := m.List()
	require.NoError(t, err)
	assert.Len(t, manifests, 1)

	// Nothing to snapshot is not an error.
	require.NoError(t, m.EnsureBackedUp(ReasonReset, "", "/missing.json"))
}

func TestGet_RejectsTraversal(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Get("../etc")
	assert.Error(t, err)
	_, err = m.Get("")
	assert.Error(t, err)
}
