package filesystem

import (
	"io"
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// FileSystemProvider opens files for reading.
type FileSystemProvider interface {
	// Open opens the named file for streaming reads.
	// The caller must close the returned reader.
	Open(path string) (io.ReadCloser, error)

	// ReadFile reads the whole named file.
	ReadFile(path string) ([]byte, error)

	// Stat returns file information for the given path.
	Stat(path string) (FileInfo, error)
}
