package sessionfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larriantoniy/tg_report_bot/internal/domain"
)

func TestLoadOrCreate_New(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.session")

	s, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, s.Authorized)
	assert.Equal(t, filepath.Join(path+".tdlib", "database"), s.DatabaseDir)
	assert.Equal(t, filepath.Join(path+".tdlib", "files"), s.FilesDir)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "load must not create the file")
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "work.session")
	in := &domain.Session{DatabaseDir: "/db", FilesDir: "/files", UserID: 77, Phone: "+1", Authorized: true}

	require.NoError(t, Save(path, in))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, int64(77), out.UserID)
	assert.True(t, out.Authorized)
	assert.Equal(t, "/db", out.DatabaseDir)
	assert.False(t, out.SavedAt.IsZero())
}

func TestLoadOrCreate_FillsMissingDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.session")
	require.NoError(t, os.WriteFile(path, []byte("authorized: true\n"), 0o600))

	s, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, s.Authorized)
	assert.Equal(t, filepath.Join(path+".tdlib", "database"), s.DatabaseDir)
}

func TestLoadOrCreate_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.session")
	require.NoError(t, os.WriteFile(path, []byte("[unclosed"), 0o600))

	_, err := LoadOrCreate(path)
	assert.Error(t, err)
}

func TestSave_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	err := Save(filepath.Join(blocker, "s.session"), &domain.Session{})
	assert.Error(t, err)
}
