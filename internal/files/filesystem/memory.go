package filesystem

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sync"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return 0o644 }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return false }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

// MemoryFileSystem implements FileSystemProvider over an in-memory map.
// Paths are cleaned and use forward slashes. Safe for concurrent use.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryFileSystem creates an empty in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{files: make(map[string][]byte)}
}

// AddFile stores content under p, replacing any previous content.
func (m *MemoryFileSystem) AddFile(p string, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[normalize(p)] = []byte(content)
}

func (m *MemoryFileSystem) Open(p string) (io.ReadCloser, error) {
	content, err := m.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (m *MemoryFileSystem) ReadFile(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.files[normalize(p)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

func (m *MemoryFileSystem) Stat(p string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.files[normalize(p)]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
	}
	return &memoryFileInfo{name: path.Base(normalize(p)), size: int64(len(content))}, nil
}

func normalize(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

// String reports the number of stored files, for failing test output.
func (m *MemoryFileSystem) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("MemoryFileSystem(%d files)", len(m.files))
}

var _ FileSystemProvider = (*MemoryFileSystem)(nil)
