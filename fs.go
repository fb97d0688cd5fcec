package fskit

import (
	"bytes"
	"context"
	"io/fs"
)

// FS is the facade callers hold on to: a thin dispatch layer that forwards
// every operation to the driver it is bound to. Arguments, results and
// failures pass through unchanged; all validation is the driver's
// responsibility.
//
// An FS is immutable. WithDriver returns a new facade bound to another
// driver instead of mutating shared state, so a facade can be shared across
// goroutines and a per-call driver substitution on one call chain can never
// leak into another.
type FS struct {
	driver Driver
}

// New creates a facade bound to the given default driver.
func New(driver Driver) *FS {
	return &FS{driver: driver}
}

// WithDriver returns a facade bound to d. The receiver keeps its own
// binding, so
//
//	fs.WithDriver(b).Read(ctx, path)
//
// reads through b while the next call on fs still uses the default driver.
// Chaining WithDriver twice binds to the last driver given. A nil driver
// returns the receiver unchanged.
func (f *FS) WithDriver(d Driver) *FS {
	if d == nil {
		return f
	}
	return &FS{driver: d}
}

// Driver returns the driver this facade is bound to.
func (f *FS) Driver() Driver {
	return f.driver
}

// ============================================================================
// Driver Interface (Pass-Through Dispatch)
// ============================================================================

// Read delegates to the bound driver.
func (f *FS) Read(ctx context.Context, path string) ([]byte, error) {
	return f.driver.Read(ctx, path)
}

// Write delegates to the bound driver.
func (f *FS) Write(ctx context.Context, path string, data []byte) error {
	return f.driver.Write(ctx, path, data)
}

// Append delegates to the bound driver.
func (f *FS) Append(ctx context.Context, path string, data []byte) error {
	return f.driver.Append(ctx, path, data)
}

// Exists delegates to the bound driver.
func (f *FS) Exists(ctx context.Context, path string) bool {
	return f.driver.Exists(ctx, path)
}

// IsDir delegates to the bound driver.
func (f *FS) IsDir(ctx context.Context, path string) (bool, error) {
	return f.driver.IsDir(ctx, path)
}

// IsFile delegates to the bound driver.
func (f *FS) IsFile(ctx context.Context, path string) (bool, error) {
	return f.driver.IsFile(ctx, path)
}

// IsSymlink delegates to the bound driver.
func (f *FS) IsSymlink(ctx context.Context, path string) (bool, error) {
	return f.driver.IsSymlink(ctx, path)
}

// Delete delegates to the bound driver.
func (f *FS) Delete(ctx context.Context, path string) error {
	return f.driver.Delete(ctx, path)
}

// DeleteAll delegates to the bound driver.
func (f *FS) DeleteAll(ctx context.Context, path string) error {
	return f.driver.DeleteAll(ctx, path)
}

// Chmod delegates to the bound driver.
func (f *FS) Chmod(ctx context.Context, path string, mode fs.FileMode) error {
	return f.driver.Chmod(ctx, path, mode)
}

// Copy delegates to the bound driver.
func (f *FS) Copy(ctx context.Context, src, dst string, options ...Option) error {
	return f.driver.Copy(ctx, src, dst, options...)
}

// CreateDir delegates to the bound driver.
func (f *FS) CreateDir(ctx context.Context, path string, options ...Option) error {
	return f.driver.CreateDir(ctx, path, options...)
}

// ReadDir delegates to the bound driver.
func (f *FS) ReadDir(ctx context.Context, path string) ([]string, error) {
	return f.driver.ReadDir(ctx, path)
}

// Rename delegates to the bound driver.
func (f *FS) Rename(ctx context.Context, oldPath, newPath string) error {
	return f.driver.Rename(ctx, oldPath, newPath)
}

// ============================================================================
// Optional Capability Delegation
// ============================================================================

// Stat returns metadata for path if the bound driver supports CanStat.
func (f *FS) Stat(ctx context.Context, path string) (*FileInfo, error) {
	if s, ok := f.driver.(CanStat); ok {
		return s.Stat(ctx, path)
	}
	return nil, &PathError{Op: "stat", Path: path, Err: ErrNotSupported}
}

// Checksum calculates the checksum of a file, using the driver's native
// implementation when available and falling back to a full read.
func (f *FS) Checksum(ctx context.Context, path string, algorithm ChecksumAlgorithm) (string, error) {
	if cs, ok := f.driver.(CanChecksum); ok {
		return cs.Checksum(ctx, path, algorithm)
	}

	data, err := f.driver.Read(ctx, path)
	if err != nil {
		return "", err
	}
	return CalculateChecksum(bytes.NewReader(data), algorithm)
}

// Checksums calculates multiple checksums of a file in a single pass, using
// the driver's native implementation when available.
func (f *FS) Checksums(ctx context.Context, path string, algorithms []ChecksumAlgorithm) (map[ChecksumAlgorithm]string, error) {
	if cs, ok := f.driver.(CanChecksum); ok {
		return cs.Checksums(ctx, path, algorithms)
	}

	data, err := f.driver.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return CalculateChecksums(bytes.NewReader(data), algorithms)
}

// ============================================================================
// Interface Assertions
// ============================================================================

// An FS satisfies Driver itself, so facades compose with decorators and can
// back other facades.
var (
	_ Driver      = (*FS)(nil)
	_ Reader      = (*FS)(nil)
	_ Writer      = (*FS)(nil)
	_ CanStat     = (*FS)(nil)
	_ CanChecksum = (*FS)(nil)
)
