// Package filesystem provides a small filesystem abstraction for reading
// upload files and key material.
//
// Implementations:
//   - OSFileSystem: Production implementation using the OS filesystem
//   - MemoryFileSystem: In-memory implementation for testing
package filesystem
