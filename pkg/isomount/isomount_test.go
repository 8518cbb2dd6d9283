package isomount

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestFindInstallerInNestedDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "readme.txt"))
	writeFile(t, filepath.Join(root, "agent", "x64", "setup.exe"))

	got, err := FindInstaller(root, "setup.exe")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "agent", "x64", "setup.exe"), got)
}

func TestFindInstallerIsCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "SETUP.EXE"))

	got, err := FindInstaller(root, "setup.exe")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "SETUP.EXE"), got)
}

func TestFindInstallerMissingFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "other.exe"))

	got, err := FindInstaller(root, "setup.exe")
	require.Empty(t, got)

	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
	require.Equal(t, "setup.exe", nfe.FileName)
}
