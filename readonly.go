package fskit

import (
	"context"
	"errors"
	"io/fs"
)

// ErrReadOnly is returned when a mutating operation is attempted on a
// read-only driver.
var ErrReadOnly = errors.New("filesystem is read-only")

// ============================================================================
// ReadOnly Decorator
// ============================================================================

// ReadOnly wraps a Driver and rejects every mutating operation with
// ErrReadOnly. This is useful for:
// - Providing safe read-only access to sensitive data
// - Creating temporary read-only views of a filesystem
// - Exposing a driver to untrusted code
//
// Read operations pass through unchanged, as do the optional stat and
// checksum capabilities when the wrapped driver supports them.
//
// Example:
//
//	f := fskit.New(fskit.NewReadOnly(driver))
//
//	// Read operations work normally
//	data, _ := f.Read(ctx, "config.yml")
//
//	// Mutations return ErrReadOnly
//	err := f.Delete(ctx, "config.yml")
//	// fskit.IsReadOnlyError(err) == true
type ReadOnly struct {
	d Driver
}

// NewReadOnly creates a read-only wrapper around a driver.
func NewReadOnly(d Driver) *ReadOnly {
	return &ReadOnly{d: d}
}

// Unwrap returns the underlying driver.
func (r *ReadOnly) Unwrap() Driver {
	return r.d
}

// IsReadOnly returns true, indicating this driver rejects mutations.
func (r *ReadOnly) IsReadOnly() bool {
	return true
}

// ============================================================================
// Read Operations (Delegated)
// ============================================================================

// Read delegates to the underlying driver.
func (r *ReadOnly) Read(ctx context.Context, path string) ([]byte, error) {
	return r.d.Read(ctx, path)
}

// Exists delegates to the underlying driver.
func (r *ReadOnly) Exists(ctx context.Context, path string) bool {
	return r.d.Exists(ctx, path)
}

// IsDir delegates to the underlying driver.
func (r *ReadOnly) IsDir(ctx context.Context, path string) (bool, error) {
	return r.d.IsDir(ctx, path)
}

// IsFile delegates to the underlying driver.
func (r *ReadOnly) IsFile(ctx context.Context, path string) (bool, error) {
	return r.d.IsFile(ctx, path)
}

// IsSymlink delegates to the underlying driver.
func (r *ReadOnly) IsSymlink(ctx context.Context, path string) (bool, error) {
	return r.d.IsSymlink(ctx, path)
}

// ReadDir delegates to the underlying driver.
func (r *ReadOnly) ReadDir(ctx context.Context, path string) ([]string, error) {
	return r.d.ReadDir(ctx, path)
}

// ============================================================================
// Write Operations (Blocked)
// ============================================================================

// Write returns ErrReadOnly.
func (r *ReadOnly) Write(ctx context.Context, path string, content []byte) error {
	return &PathError{Op: "write", Path: path, Err: ErrReadOnly}
}

// Append returns ErrReadOnly.
func (r *ReadOnly) Append(ctx context.Context, path string, content []byte) error {
	return &PathError{Op: "append", Path: path, Err: ErrReadOnly}
}

// Delete returns ErrReadOnly.
func (r *ReadOnly) Delete(ctx context.Context, path string) error {
	return &PathError{Op: "delete", Path: path, Err: ErrReadOnly}
}

// DeleteAll returns ErrReadOnly.
func (r *ReadOnly) DeleteAll(ctx context.Context, path string) error {
	return &PathError{Op: "deleteall", Path: path, Err: ErrReadOnly}
}

// Chmod returns ErrReadOnly.
func (r *ReadOnly) Chmod(ctx context.Context, path string, mode fs.FileMode) error {
	return &PathError{Op: "chmod", Path: path, Err: ErrReadOnly}
}

// Copy returns ErrReadOnly.
func (r *ReadOnly) Copy(ctx context.Context, src, dst string, options ...Option) error {
	return &PathError{Op: "copy", Path: dst, Err: ErrReadOnly}
}

// CreateDir returns ErrReadOnly.
func (r *ReadOnly) CreateDir(ctx context.Context, path string, options ...Option) error {
	return &PathError{Op: "createdir", Path: path, Err: ErrReadOnly}
}

// Rename returns ErrReadOnly.
func (r *ReadOnly) Rename(ctx context.Context, oldPath, newPath string) error {
	return &PathError{Op: "rename", Path: newPath, Err: ErrReadOnly}
}

// ============================================================================
// Optional Capability Delegation
// ============================================================================

// Stat delegates to the underlying driver if supported.
func (r *ReadOnly) Stat(ctx context.Context, path string) (*FileInfo, error) {
	if s, ok := r.d.(CanStat); ok {
		return s.Stat(ctx, path)
	}
	return nil, &PathError{Op: "stat", Path: path, Err: ErrNotSupported}
}

// Checksum delegates to the underlying driver if supported.
func (r *ReadOnly) Checksum(ctx context.Context, path string, algorithm ChecksumAlgorithm) (string, error) {
	if checksummer, ok := r.d.(CanChecksum); ok {
		return checksummer.Checksum(ctx, path, algorithm)
	}
	return "", &PathError{Op: "checksum", Path: path, Err: ErrNotSupported}
}

// Checksums delegates to the underlying driver if supported.
func (r *ReadOnly) Checksums(ctx context.Context, path string, algorithms []ChecksumAlgorithm) (map[ChecksumAlgorithm]string, error) {
	if checksummer, ok := r.d.(CanChecksum); ok {
		return checksummer.Checksums(ctx, path, algorithms)
	}
	return nil, &PathError{Op: "checksums", Path: path, Err: ErrNotSupported}
}

// ============================================================================
// Interface Assertions
// ============================================================================

// Ensure ReadOnly implements Driver and optional interfaces
var (
	_ Driver      = (*ReadOnly)(nil)
	_ Reader      = (*ReadOnly)(nil)
	_ Writer      = (*ReadOnly)(nil)
	_ CanStat     = (*ReadOnly)(nil)
	_ CanChecksum = (*ReadOnly)(nil)
)

// ============================================================================
// Helper Functions
// ============================================================================

// IsReadOnlyError checks if an error is due to read-only restrictions.
func IsReadOnlyError(err error) bool {
	return errors.Is(err, ErrReadOnly)
}
