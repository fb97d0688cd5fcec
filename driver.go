package fskit

import (
	"context"
	"io/fs"
	"time"
)

// FileInfo represents file/directory metadata
type FileInfo struct {
	Name    string
	Path    string
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
}

// ============================================================================
// Core Interfaces (Interface Segregation)
// ============================================================================

// Reader provides the read-only half of the driver contract.
// Use this type in function signatures to enforce read-only at compile time.
type Reader interface {
	// Read returns the entire content of the file at path. The path must
	// name an existing regular file or symbolic link.
	Read(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether path names a reachable entry. It never fails:
	// a path that is absent and a path that cannot be read both report false.
	Exists(ctx context.Context, path string) bool

	// IsDir reports whether path names a directory. The path must exist.
	IsDir(ctx context.Context, path string) (bool, error)

	// IsFile reports whether path names a regular file. The path must exist.
	IsFile(ctx context.Context, path string) (bool, error)

	// IsSymlink reports whether path names a symbolic link, without
	// dereferencing it. The path must exist.
	IsSymlink(ctx context.Context, path string) (bool, error)

	// ReadDir lists the names of the immediate entries of the directory at
	// path, sorted. The path must exist.
	ReadDir(ctx context.Context, path string) ([]string, error)
}

// Writer provides the mutating half of the driver contract.
type Writer interface {
	// Write replaces the content of the file at path. The path must name an
	// existing regular file; writing does not create files.
	Write(ctx context.Context, path string, data []byte) error

	// Append appends data to the file at path, creating it when absent.
	Append(ctx context.Context, path string, data []byte) error

	// Delete removes the single entry at path: a file or symbolic link is
	// unlinked, a directory is removed only if empty. It never recurses.
	Delete(ctx context.Context, path string) error

	// DeleteAll removes path and everything beneath it. Symbolic links
	// encountered during the descent are unlinked, never followed.
	DeleteAll(ctx context.Context, path string) error

	// Chmod changes the permission mode of the entry at path. The path must
	// exist.
	Chmod(ctx context.Context, path string, mode fs.FileMode) error

	// Copy duplicates the file at src to dst. The source must exist. By
	// default an existing destination is overwritten; WithOverwrite(false)
	// makes an existing destination an error instead.
	Copy(ctx context.Context, src, dst string, options ...Option) error

	// CreateDir creates the directory at path. By default the path must not
	// exist and its parent must; WithRecursive(true) creates every missing
	// ancestor as well, skipping segments that already exist. WithMode sets
	// the permission mode for created directories.
	CreateDir(ctx context.Context, path string, options ...Option) error

	// Rename moves the entry at oldPath to newPath. The old path must
	// exist and the new path must not.
	Rename(ctx context.Context, oldPath, newPath string) error
}

// Driver is the capability contract every storage backend implements.
// Drivers check the documented preconditions before touching the backing
// store and classify precondition failures as ErrNotExist, ErrExist or
// ErrInvalidPath wrapped in a *PathError; failures of the native call
// itself are wrapped without reinterpretation.
type Driver interface {
	Reader
	Writer
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================
// These interfaces allow drivers to expose optional capabilities.
// Use type assertion to check if a driver supports a capability:
//
//	if s, ok := d.(CanStat); ok {
//	    info, err := s.Stat(ctx, path)
//	}

// CanStat indicates the driver can report entry metadata in one call.
type CanStat interface {
	// Stat returns metadata for the entry at path.
	Stat(ctx context.Context, path string) (*FileInfo, error)
}

// ============================================================================
// Checksum Capability
// ============================================================================

// ChecksumAlgorithm represents a supported checksum algorithm
type ChecksumAlgorithm string

const (
	// ChecksumMD5 is the MD5 hash algorithm (128-bit, fast but not cryptographically secure)
	ChecksumMD5 ChecksumAlgorithm = "md5"
	// ChecksumSHA1 is the SHA-1 hash algorithm (160-bit, legacy)
	ChecksumSHA1 ChecksumAlgorithm = "sha1"
	// ChecksumSHA256 is the SHA-256 hash algorithm (256-bit, recommended)
	ChecksumSHA256 ChecksumAlgorithm = "sha256"
	// ChecksumSHA512 is the SHA-512 hash algorithm (512-bit, most secure)
	ChecksumSHA512 ChecksumAlgorithm = "sha512"
	// ChecksumCRC32 is the CRC32 checksum (32-bit, fastest, for integrity only)
	ChecksumCRC32 ChecksumAlgorithm = "crc32"
	// ChecksumXXHash is the xxHash algorithm (64-bit, extremely fast)
	ChecksumXXHash ChecksumAlgorithm = "xxhash"
)

// CanChecksum indicates the driver supports integrity verification without
// round-tripping file content through the caller.
//
// Example:
//
//	if cs, ok := d.(CanChecksum); ok {
//	    hash, err := cs.Checksum(ctx, "file.txt", ChecksumSHA256)
//	    fmt.Printf("SHA256: %s\n", hash)
//	}
type CanChecksum interface {
	// Checksum calculates the checksum of a file using the specified algorithm.
	// Returns the checksum as a hex-encoded string.
	Checksum(ctx context.Context, path string, algorithm ChecksumAlgorithm) (string, error)

	// Checksums calculates multiple checksums in a single read pass.
	// Returns a map of algorithm to hex-encoded checksum.
	Checksums(ctx context.Context, path string, algorithms []ChecksumAlgorithm) (map[ChecksumAlgorithm]string, error)
}
