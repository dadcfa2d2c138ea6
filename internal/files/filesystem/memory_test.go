package filesystem

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystem_ReadFile(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.AddFile("/uploads/genes.tsv", "PotriID\n")

	content, err := mfs.ReadFile("/uploads/genes.tsv")
	require.NoError(t, err)
	require.Equal(t, "PotriID\n", string(content))

	// Paths are cleaned before lookup
	content, err = mfs.ReadFile("/uploads/../uploads/genes.tsv")
	require.NoError(t, err)
	require.Equal(t, "PotriID\n", string(content))
}

func TestMemoryFileSystem_Open(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.AddFile("genes.tsv", "a\tb\n")

	rc, err := mfs.Open("genes.tsv")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "a\tb\n", string(data))
}

func TestMemoryFileSystem_Missing(t *testing.T) {
	mfs := NewMemoryFileSystem()

	_, err := mfs.Open("nope.tsv")
	require.True(t, errors.Is(err, fs.ErrNotExist), "expected ErrNotExist, got %v", err)

	_, err = mfs.Stat("nope.tsv")
	require.True(t, errors.Is(err, fs.ErrNotExist), "expected ErrNotExist, got %v", err)
}

func TestMemoryFileSystem_Stat(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.AddFile("/data/genes.tsv", "12345")

	info, err := mfs.Stat("/data/genes.tsv")
	require.NoError(t, err)
	require.False(t, info.IsDir())
	require.Equal(t, "genes.tsv", info.Name())
	require.Equal(t, int64(5), info.Size())
}

func TestOSFileSystem_OpenRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := NewOSFileSystem().Open(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "is a directory")
}

func TestOSFileSystem_ReadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "genes.tsv")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))

	data, err := NewOSFileSystem().ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "x", string(data))
}
