package local

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gobeaver/fskit"
)

// Driver provides a local filesystem implementation of fskit.Driver.
// All paths are resolved against a fixed root directory and may not
// escape it.
type Driver struct {
	root string
}

// New creates a local driver rooted at the given directory. The root is
// created if it does not exist.
func New(root string) (*Driver, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	// Ensure the root directory exists
	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return nil, err
	}

	return &Driver{
		root: absRoot,
	}, nil
}

// Root returns the absolute root directory of the driver.
func (d *Driver) Root() string {
	return d.root
}

// resolve maps a driver path to an absolute path under the root. Paths
// that would escape the root fail with ErrNotAllowed.
func (d *Driver) resolve(op, path string) (string, error) {
	fullPath := filepath.Join(d.root, filepath.Clean(path))

	if !isPathUnderRoot(d.root, fullPath) {
		return "", &fskit.PathError{
			Op:   op,
			Path: path,
			Err:  fskit.ErrNotAllowed,
		}
	}

	return fullPath, nil
}

// isPathUnderRoot checks if a path is under a given root directory
func isPathUnderRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	return !filepath.IsAbs(rel) && rel != ".." &&
		!strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ============================================================================
// Read Operations
// ============================================================================

// Read implements fskit.Reader. Reading a directory fails with
// ErrInvalidPath.
func (d *Driver) Read(ctx context.Context, path string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := d.resolve("read", path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &fskit.PathError{Op: "read", Path: path, Err: fskit.ErrNotExist}
		}
		return nil, &fskit.PathError{Op: "read", Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &fskit.PathError{Op: "read", Path: path, Err: fskit.ErrInvalidPath}
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &fskit.PathError{Op: "read", Path: path, Err: fskit.ErrNotExist}
		}
		return nil, &fskit.PathError{Op: "read", Path: path, Err: err}
	}

	return data, nil
}

// Exists implements fskit.Reader. It reports whether the path resolves to
// an entry the caller can read; a present but unreadable entry reads as
// absent, the same as a missing one.
func (d *Driver) Exists(ctx context.Context, path string) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}

	fullPath, err := d.resolve("exists", path)
	if err != nil {
		return false
	}

	// Open for reading rather than stat, so presence means readability.
	// O_NONBLOCK keeps the open from hanging on pipe entries.
	f, err := os.OpenFile(fullPath, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return false
	}
	f.Close()

	return true
}

// IsDir implements fskit.Reader.
func (d *Driver) IsDir(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	fullPath, err := d.resolve("isdir", path)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, &fskit.PathError{Op: "isdir", Path: path, Err: fskit.ErrNotExist}
		}
		return false, &fskit.PathError{Op: "isdir", Path: path, Err: err}
	}

	return info.IsDir(), nil
}

// IsFile implements fskit.Reader. Symbolic links are followed, so a link
// pointing at a regular file reports true.
func (d *Driver) IsFile(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	fullPath, err := d.resolve("isfile", path)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, &fskit.PathError{Op: "isfile", Path: path, Err: fskit.ErrNotExist}
		}
		return false, &fskit.PathError{Op: "isfile", Path: path, Err: err}
	}

	return info.Mode().IsRegular(), nil
}

// IsSymlink implements fskit.Reader. The link itself is inspected, never
// its target, so dangling links still report true.
func (d *Driver) IsSymlink(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	fullPath, err := d.resolve("issymlink", path)
	if err != nil {
		return false, err
	}

	info, err := os.Lstat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, &fskit.PathError{Op: "issymlink", Path: path, Err: fskit.ErrNotExist}
		}
		return false, &fskit.PathError{Op: "issymlink", Path: path, Err: err}
	}

	return info.Mode()&fs.ModeSymlink != 0, nil
}

// ReadDir implements fskit.Reader. It returns the names of the immediate
// children, sorted. Listing a non-directory fails with ErrInvalidPath.
func (d *Driver) ReadDir(ctx context.Context, path string) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := d.resolve("readdir", path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &fskit.PathError{Op: "readdir", Path: path, Err: fskit.ErrNotExist}
		}
		return nil, &fskit.PathError{Op: "readdir", Path: path, Err: err}
	}
	if !info.IsDir() {
		return nil, &fskit.PathError{Op: "readdir", Path: path, Err: fskit.ErrInvalidPath}
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, &fskit.PathError{Op: "readdir", Path: path, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names, nil
}

// ============================================================================
// Write Operations
// ============================================================================

// Write implements fskit.Writer. The target must already exist as a
// regular file; anything else fails with ErrInvalidPath. Use Append to
// create a file.
func (d *Driver) Write(ctx context.Context, path string, content []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := d.resolve("write", path)
	if err != nil {
		return err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &fskit.PathError{Op: "write", Path: path, Err: fskit.ErrInvalidPath}
		}
		return &fskit.PathError{Op: "write", Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return &fskit.PathError{Op: "write", Path: path, Err: fskit.ErrInvalidPath}
	}

	if err := os.WriteFile(fullPath, content, 0o666); err != nil {
		return &fskit.PathError{Op: "write", Path: path, Err: err}
	}

	return nil
}

// Append implements fskit.Writer. The file is created if absent, but the
// parent directory must already exist.
func (d *Driver) Append(ctx context.Context, path string, content []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := d.resolve("append", path)
	if err != nil {
		return err
	}

	if info, err := os.Stat(fullPath); err == nil && info.IsDir() {
		return &fskit.PathError{Op: "append", Path: path, Err: fskit.ErrInvalidPath}
	}

	f, err := os.OpenFile(fullPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
	if err != nil {
		if os.IsNotExist(err) {
			return &fskit.PathError{Op: "append", Path: path, Err: fskit.ErrNotExist}
		}
		return &fskit.PathError{Op: "append", Path: path, Err: err}
	}
	defer f.Close()

	if _, err := f.Write(content); err != nil {
		return &fskit.PathError{Op: "append", Path: path, Err: err}
	}

	return nil
}

// Delete implements fskit.Writer. It removes a file, a symbolic link, or
// an empty directory; any other entry kind fails with ErrInvalidPath, a
// non-empty directory with the native error. Use DeleteAll for recursive
// removal. The root itself cannot be deleted.
func (d *Driver) Delete(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := d.resolve("delete", path)
	if err != nil {
		return err
	}

	if fullPath == d.root {
		return &fskit.PathError{Op: "delete", Path: path, Err: fskit.ErrInvalidPath}
	}

	info, err := os.Lstat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &fskit.PathError{Op: "delete", Path: path, Err: fskit.ErrNotExist}
		}
		return &fskit.PathError{Op: "delete", Path: path, Err: err}
	}

	// Pipes, sockets and device nodes are not deletable entries
	if m := info.Mode(); !m.IsRegular() && !m.IsDir() && m&fs.ModeSymlink == 0 {
		return &fskit.PathError{Op: "delete", Path: path, Err: fskit.ErrInvalidPath}
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return &fskit.PathError{Op: "delete", Path: path, Err: fskit.ErrNotExist}
		}
		return &fskit.PathError{Op: "delete", Path: path, Err: err}
	}

	return nil
}

// DeleteAll implements fskit.Writer. It removes the path and everything
// beneath it. Symbolic links are removed, never followed. A missing path
// is not an error.
func (d *Driver) DeleteAll(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := d.resolve("deleteall", path)
	if err != nil {
		return err
	}

	if err := d.deleteTree(ctx, fullPath); err != nil {
		return &fskit.PathError{Op: "deleteall", Path: path, Err: err}
	}

	return nil
}

// deleteTree removes fullPath recursively, children first. Links are
// treated as leaves.
func (d *Driver) deleteTree(ctx context.Context, fullPath string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	info, err := os.Lstat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if info.IsDir() {
		entries, err := os.ReadDir(fullPath)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := d.deleteTree(ctx, filepath.Join(fullPath, entry.Name())); err != nil {
				return err
			}
		}
	}

	return os.Remove(fullPath)
}

// Chmod implements fskit.Writer. Symbolic links are followed; the target's
// mode changes, not the link's.
func (d *Driver) Chmod(ctx context.Context, path string, mode fs.FileMode) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := d.resolve("chmod", path)
	if err != nil {
		return err
	}

	if err := os.Chmod(fullPath, mode); err != nil {
		if os.IsNotExist(err) {
			return &fskit.PathError{Op: "chmod", Path: path, Err: fskit.ErrNotExist}
		}
		return &fskit.PathError{Op: "chmod", Path: path, Err: err}
	}

	return nil
}

// Copy implements fskit.Writer. Only regular files are copied; the source
// mode is carried over to the destination. WithOverwrite(false) makes an
// existing destination fail with ErrExist.
func (d *Driver) Copy(ctx context.Context, src, dst string, options ...fskit.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	srcPath, err := d.resolve("copy", src)
	if err != nil {
		return err
	}
	dstPath, err := d.resolve("copy", dst)
	if err != nil {
		return err
	}

	opts := fskit.NewOptions(options...)

	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &fskit.PathError{Op: "copy", Path: src, Err: fskit.ErrNotExist}
		}
		return &fskit.PathError{Op: "copy", Path: src, Err: err}
	}
	if !srcInfo.Mode().IsRegular() {
		return &fskit.PathError{Op: "copy", Path: src, Err: fskit.ErrInvalidPath}
	}

	if !opts.Overwrite {
		if _, err := os.Lstat(dstPath); err == nil {
			return &fskit.PathError{Op: "copy", Path: dst, Err: fskit.ErrExist}
		} else if !os.IsNotExist(err) {
			return &fskit.PathError{Op: "copy", Path: dst, Err: err}
		}
	}

	// Both names resolving to one entry: creating dst would truncate src
	// before the first read
	if srcPath == dstPath {
		return nil
	}

	srcFile, err := os.Open(srcPath)
	if err != nil {
		return &fskit.PathError{Op: "copy", Path: src, Err: err}
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dstPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &fskit.PathError{Op: "copy", Path: dst, Err: fskit.ErrNotExist}
		}
		return &fskit.PathError{Op: "copy", Path: dst, Err: err}
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return &fskit.PathError{Op: "copy", Path: dst, Err: err}
	}

	// Carry over the source permissions
	os.Chmod(dstPath, srcInfo.Mode())

	return nil
}

// CreateDir implements fskit.Writer. Without WithRecursive the parent must
// exist and the target must not. With WithRecursive each missing level is
// created in order and existing levels are left alone.
func (d *Driver) CreateDir(ctx context.Context, path string, options ...fskit.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := d.resolve("createdir", path)
	if err != nil {
		return err
	}

	opts := fskit.NewOptions(options...)

	if !opts.Recursive {
		if _, err := os.Lstat(fullPath); err == nil {
			return &fskit.PathError{Op: "createdir", Path: path, Err: fskit.ErrExist}
		} else if !os.IsNotExist(err) {
			return &fskit.PathError{Op: "createdir", Path: path, Err: err}
		}

		if err := os.Mkdir(fullPath, opts.Mode); err != nil {
			if os.IsNotExist(err) {
				return &fskit.PathError{Op: "createdir", Path: path, Err: fskit.ErrNotExist}
			}
			if os.IsExist(err) {
				return &fskit.PathError{Op: "createdir", Path: path, Err: fskit.ErrExist}
			}
			return &fskit.PathError{Op: "createdir", Path: path, Err: err}
		}

		return nil
	}

	rel, err := filepath.Rel(d.root, fullPath)
	if err != nil {
		return &fskit.PathError{Op: "createdir", Path: path, Err: err}
	}
	if rel == "." {
		return nil
	}

	cur := d.root
	for _, seg := range strings.Split(rel, string(filepath.Separator)) {
		cur = filepath.Join(cur, seg)
		if err := os.Mkdir(cur, opts.Mode); err != nil {
			// A level that already exists is settled, whatever holds it
			if os.IsExist(err) {
				continue
			}
			return &fskit.PathError{Op: "createdir", Path: path, Err: err}
		}
	}

	return nil
}

// Rename implements fskit.Writer. The old path must exist and the new path
// must not; both are checked without following links, so renaming a
// symbolic link moves the link itself.
func (d *Driver) Rename(ctx context.Context, oldPath, newPath string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	oldFull, err := d.resolve("rename", oldPath)
	if err != nil {
		return err
	}
	newFull, err := d.resolve("rename", newPath)
	if err != nil {
		return err
	}

	if _, err := os.Lstat(oldFull); err != nil {
		if os.IsNotExist(err) {
			return &fskit.PathError{Op: "rename", Path: oldPath, Err: fskit.ErrNotExist}
		}
		return &fskit.PathError{Op: "rename", Path: oldPath, Err: err}
	}

	if _, err := os.Lstat(newFull); err == nil {
		return &fskit.PathError{Op: "rename", Path: newPath, Err: fskit.ErrExist}
	} else if !os.IsNotExist(err) {
		return &fskit.PathError{Op: "rename", Path: newPath, Err: err}
	}

	if err := os.Rename(oldFull, newFull); err != nil {
		return &fskit.PathError{Op: "rename", Path: oldPath, Err: err}
	}

	return nil
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================

// Stat implements fskit.CanStat.
func (d *Driver) Stat(ctx context.Context, path string) (*fskit.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := d.resolve("stat", path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &fskit.PathError{Op: "stat", Path: path, Err: fskit.ErrNotExist}
		}
		return nil, &fskit.PathError{Op: "stat", Path: path, Err: err}
	}

	return &fskit.FileInfo{
		Name:    info.Name(),
		Path:    path,
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}, nil
}

// Checksum implements fskit.CanChecksum. The file is streamed through the
// hash, never loaded whole.
func (d *Driver) Checksum(ctx context.Context, path string, algorithm fskit.ChecksumAlgorithm) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	fullPath, err := d.resolve("checksum", path)
	if err != nil {
		return "", err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &fskit.PathError{Op: "checksum", Path: path, Err: fskit.ErrNotExist}
		}
		return "", &fskit.PathError{Op: "checksum", Path: path, Err: err}
	}
	defer file.Close()

	checksum, err := fskit.CalculateChecksum(file, algorithm)
	if err != nil {
		return "", &fskit.PathError{Op: "checksum", Path: path, Err: err}
	}

	return checksum, nil
}

// Checksums implements fskit.CanChecksum for multi-hash calculation in a
// single pass over the file.
func (d *Driver) Checksums(ctx context.Context, path string, algorithms []fskit.ChecksumAlgorithm) (map[fskit.ChecksumAlgorithm]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := d.resolve("checksums", path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &fskit.PathError{Op: "checksums", Path: path, Err: fskit.ErrNotExist}
		}
		return nil, &fskit.PathError{Op: "checksums", Path: path, Err: err}
	}
	defer file.Close()

	checksums, err := fskit.CalculateChecksums(file, algorithms)
	if err != nil {
		return nil, &fskit.PathError{Op: "checksums", Path: path, Err: err}
	}

	return checksums, nil
}

// Ensure Driver implements interfaces
var (
	_ fskit.Driver      = (*Driver)(nil)
	_ fskit.Reader      = (*Driver)(nil)
	_ fskit.Writer      = (*Driver)(nil)
	_ fskit.CanStat     = (*Driver)(nil)
	_ fskit.CanChecksum = (*Driver)(nil)
)
