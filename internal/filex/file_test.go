package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureSubDir_CreatesDirectoryInCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureSubDir("snapshots")
	require.NoError(t, err)

	want := filepath.Join(tmp, "snapshots")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureSubDir_AbsoluteAndIdempotent(t *testing.T) {
	want := filepath.Join(t.TempDir(), "a", "b")

	first, err := EnsureSubDir(want)
	require.NoError(t, err)
	require.Equal(t, want, first)

	second, err := EnsureSubDir(want)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEnsureSubDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, os.WriteFile("snapshots", []byte("x"), 0o660))

	_, err := EnsureSubDir("snapshots")
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteFile(dir, "snap.json", []byte(`{"notes":[]}`))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "snap.json"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{"notes":[]}`, string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not be left behind")

	_, err = WriteFile(filepath.Join(dir, "missing"), "x", nil)
	require.Error(t, err)
}
