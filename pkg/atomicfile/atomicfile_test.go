package atomicfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCreatesFileWithContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target.txt")

	require.NoError(t, Write(path, []byte("hello"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestWriteReplacesExistingFileAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, Write(path, []byte("new"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestWriteLeavesNoTempFilesBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "target.txt")

	require.NoError(t, Write(path, []byte("data"), 0o644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "target.txt", entries[0].Name())
}

func TestWritePidFile(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WritePidFile(dir, "stmgr-1", 4242))

	got, err := os.ReadFile(filepath.Join(dir, "stmgr-1.pid"))
	require.NoError(t, err)
	assert.Equal(t, "4242", string(got))
}

func TestWriteFailsForUnwritableDirectory(t *testing.T) {
	err := Write(filepath.Join("/no/such/directory", "target.txt"), []byte("x"), 0o644)
	require.Error(t, err)
}
