package fskit

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// fakeDriver is an in-package test double. It records every call it
// receives and serves content from a plain map, without any of the
// precondition checking a real driver does.
type fakeDriver struct {
	calls []string
	data  map[string][]byte
	names []string
	err   error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{data: make(map[string][]byte)}
}

func (d *fakeDriver) record(op string, paths ...string) {
	d.calls = append(d.calls, strings.Join(append([]string{op}, paths...), " "))
}

func (d *fakeDriver) lastCall() string {
	if len(d.calls) == 0 {
		return ""
	}
	return d.calls[len(d.calls)-1]
}

func (d *fakeDriver) Read(ctx context.Context, path string) ([]byte, error) {
	d.record("read", path)
	if d.err != nil {
		return nil, d.err
	}
	content, ok := d.data[path]
	if !ok {
		return nil, &PathError{Op: "read", Path: path, Err: ErrNotExist}
	}
	return content, nil
}

func (d *fakeDriver) Exists(ctx context.Context, path string) bool {
	d.record("exists", path)
	_, ok := d.data[path]
	return ok
}

func (d *fakeDriver) IsDir(ctx context.Context, path string) (bool, error) {
	d.record("isdir", path)
	return false, d.err
}

func (d *fakeDriver) IsFile(ctx context.Context, path string) (bool, error) {
	d.record("isfile", path)
	_, ok := d.data[path]
	return ok, d.err
}

func (d *fakeDriver) IsSymlink(ctx context.Context, path string) (bool, error) {
	d.record("issymlink", path)
	return false, d.err
}

func (d *fakeDriver) ReadDir(ctx context.Context, path string) ([]string, error) {
	d.record("readdir", path)
	return d.names, d.err
}

func (d *fakeDriver) Write(ctx context.Context, path string, content []byte) error {
	d.record("write", path)
	if d.err != nil {
		return d.err
	}
	d.data[path] = append([]byte(nil), content...)
	return nil
}

func (d *fakeDriver) Append(ctx context.Context, path string, content []byte) error {
	d.record("append", path)
	if d.err != nil {
		return d.err
	}
	d.data[path] = append(d.data[path], content...)
	return nil
}

func (d *fakeDriver) Delete(ctx context.Context, path string) error {
	d.record("delete", path)
	delete(d.data, path)
	return d.err
}

func (d *fakeDriver) DeleteAll(ctx context.Context, path string) error {
	d.record("deleteall", path)
	delete(d.data, path)
	return d.err
}

func (d *fakeDriver) Chmod(ctx context.Context, path string, mode fs.FileMode) error {
	d.record("chmod", path)
	return d.err
}

func (d *fakeDriver) Copy(ctx context.Context, src, dst string, options ...Option) error {
	d.record("copy", src, dst)
	if d.err != nil {
		return d.err
	}
	d.data[dst] = d.data[src]
	return nil
}

func (d *fakeDriver) CreateDir(ctx context.Context, path string, options ...Option) error {
	d.record("createdir", path)
	return d.err
}

func (d *fakeDriver) Rename(ctx context.Context, oldPath, newPath string) error {
	d.record("rename", oldPath, newPath)
	if d.err != nil {
		return d.err
	}
	d.data[newPath] = d.data[oldPath]
	delete(d.data, oldPath)
	return nil
}

// fakeStatDriver adds the stat capability on top of fakeDriver.
type fakeStatDriver struct {
	*fakeDriver
	info *FileInfo
}

func (d *fakeStatDriver) Stat(ctx context.Context, path string) (*FileInfo, error) {
	d.record("stat", path)
	if d.err != nil {
		return nil, d.err
	}
	return d.info, nil
}

// fakeChecksumDriver adds a native checksum implementation that returns a
// marker value, so tests can tell native dispatch from the read fallback.
type fakeChecksumDriver struct {
	*fakeDriver
}

func (d *fakeChecksumDriver) Checksum(ctx context.Context, path string, algorithm ChecksumAlgorithm) (string, error) {
	d.record("checksum", path)
	return "native", nil
}

func (d *fakeChecksumDriver) Checksums(ctx context.Context, path string, algorithms []ChecksumAlgorithm) (map[ChecksumAlgorithm]string, error) {
	d.record("checksums", path)
	results := make(map[ChecksumAlgorithm]string, len(algorithms))
	for _, algo := range algorithms {
		results[algo] = "native"
	}
	return results, nil
}

func TestNew(t *testing.T) {
	d := newFakeDriver()
	f := New(d)

	if f == nil {
		t.Fatal("New() returned nil")
	}
	if f.Driver() != Driver(d) {
		t.Error("Driver() did not return the bound driver")
	}
}

func TestWithDriver(t *testing.T) {
	ctx := context.Background()

	t.Run("binds the new driver", func(t *testing.T) {
		d1 := newFakeDriver()
		d2 := newFakeDriver()
		f := New(d1)

		f2 := f.WithDriver(d2)
		f2.Read(ctx, "a.txt")

		if len(d1.calls) != 0 {
			t.Errorf("original driver saw calls: %v", d1.calls)
		}
		if d2.lastCall() != "read a.txt" {
			t.Errorf("new driver last call = %q, want %q", d2.lastCall(), "read a.txt")
		}
	})

	t.Run("receiver keeps its own binding", func(t *testing.T) {
		d1 := newFakeDriver()
		d2 := newFakeDriver()
		f := New(d1)

		_ = f.WithDriver(d2)
		f.Read(ctx, "b.txt")

		if d1.lastCall() != "read b.txt" {
			t.Errorf("original driver last call = %q, want %q", d1.lastCall(), "read b.txt")
		}
		if len(d2.calls) != 0 {
			t.Errorf("substituted driver saw calls: %v", d2.calls)
		}
	})

	t.Run("chaining binds the last driver", func(t *testing.T) {
		d1 := newFakeDriver()
		d2 := newFakeDriver()
		d3 := newFakeDriver()
		f := New(d1)

		f.WithDriver(d2).WithDriver(d3).Read(ctx, "c.txt")

		if len(d2.calls) != 0 {
			t.Errorf("intermediate driver saw calls: %v", d2.calls)
		}
		if d3.lastCall() != "read c.txt" {
			t.Errorf("last driver last call = %q, want %q", d3.lastCall(), "read c.txt")
		}
	})

	t.Run("nil driver returns the receiver", func(t *testing.T) {
		f := New(newFakeDriver())

		if f.WithDriver(nil) != f {
			t.Error("WithDriver(nil) did not return the receiver")
		}
	})
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		call     func(f *FS)
		wantCall string
	}{
		{
			name:     "read",
			call:     func(f *FS) { f.Read(ctx, "a.txt") },
			wantCall: "read a.txt",
		},
		{
			name:     "write",
			call:     func(f *FS) { f.Write(ctx, "a.txt", []byte("x")) },
			wantCall: "write a.txt",
		},
		{
			name:     "append",
			call:     func(f *FS) { f.Append(ctx, "a.txt", []byte("x")) },
			wantCall: "append a.txt",
		},
		{
			name:     "exists",
			call:     func(f *FS) { f.Exists(ctx, "a.txt") },
			wantCall: "exists a.txt",
		},
		{
			name:     "isdir",
			call:     func(f *FS) { f.IsDir(ctx, "dir") },
			wantCall: "isdir dir",
		},
		{
			name:     "isfile",
			call:     func(f *FS) { f.IsFile(ctx, "a.txt") },
			wantCall: "isfile a.txt",
		},
		{
			name:     "issymlink",
			call:     func(f *FS) { f.IsSymlink(ctx, "ln") },
			wantCall: "issymlink ln",
		},
		{
			name:     "delete",
			call:     func(f *FS) { f.Delete(ctx, "a.txt") },
			wantCall: "delete a.txt",
		},
		{
			name:     "deleteall",
			call:     func(f *FS) { f.DeleteAll(ctx, "dir") },
			wantCall: "deleteall dir",
		},
		{
			name:     "chmod",
			call:     func(f *FS) { f.Chmod(ctx, "a.txt", 0o600) },
			wantCall: "chmod a.txt",
		},
		{
			name:     "copy",
			call:     func(f *FS) { f.Copy(ctx, "a.txt", "b.txt") },
			wantCall: "copy a.txt b.txt",
		},
		{
			name:     "createdir",
			call:     func(f *FS) { f.CreateDir(ctx, "dir") },
			wantCall: "createdir dir",
		},
		{
			name:     "readdir",
			call:     func(f *FS) { f.ReadDir(ctx, "dir") },
			wantCall: "readdir dir",
		},
		{
			name:     "rename",
			call:     func(f *FS) { f.Rename(ctx, "a.txt", "b.txt") },
			wantCall: "rename a.txt b.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDriver()
			f := New(d)

			tt.call(f)

			if len(d.calls) != 1 {
				t.Fatalf("driver saw %d calls, want 1: %v", len(d.calls), d.calls)
			}
			if d.calls[0] != tt.wantCall {
				t.Errorf("driver call = %q, want %q", d.calls[0], tt.wantCall)
			}
		})
	}
}

func TestDispatchPassesResultsThrough(t *testing.T) {
	ctx := context.Background()

	t.Run("content is returned unchanged", func(t *testing.T) {
		d := newFakeDriver()
		d.data["a.txt"] = []byte("payload")
		f := New(d)

		content, err := f.Read(ctx, "a.txt")
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if string(content) != "payload" {
			t.Errorf("Read() = %q, want %q", content, "payload")
		}
	})

	t.Run("errors are returned unchanged", func(t *testing.T) {
		sentinel := errors.New("backend down")
		d := newFakeDriver()
		d.err = sentinel
		f := New(d)

		if _, err := f.Read(ctx, "a.txt"); !errors.Is(err, sentinel) {
			t.Errorf("Read() error = %v, want %v", err, sentinel)
		}

		if err := f.Chmod(ctx, "a.txt", 0o600); !errors.Is(err, sentinel) {
			t.Errorf("Chmod() error = %v, want %v", err, sentinel)
		}
	})

	t.Run("driver not exist surfaces through helpers", func(t *testing.T) {
		f := New(newFakeDriver())

		_, err := f.Read(ctx, "missing.txt")
		if !IsNotExist(err) {
			t.Errorf("IsNotExist() = false for %v", err)
		}
	})
}

func TestStat(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates when the driver can stat", func(t *testing.T) {
		want := &FileInfo{Name: "a.txt", Path: "a.txt", Size: 7, ModTime: time.Now()}
		d := &fakeStatDriver{fakeDriver: newFakeDriver(), info: want}
		f := New(d)

		info, err := f.Stat(ctx, "a.txt")
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if info != want {
			t.Errorf("Stat() = %+v, want %+v", info, want)
		}
		if d.lastCall() != "stat a.txt" {
			t.Errorf("driver last call = %q, want %q", d.lastCall(), "stat a.txt")
		}
	})

	t.Run("fails when the driver cannot stat", func(t *testing.T) {
		f := New(newFakeDriver())

		_, err := f.Stat(ctx, "a.txt")
		if !errors.Is(err, ErrNotSupported) {
			t.Errorf("Stat() error = %v, want ErrNotSupported", err)
		}

		var pathErr *PathError
		if !errors.As(err, &pathErr) {
			t.Fatal("Stat() error is not a *PathError")
		}
		if pathErr.Op != "stat" {
			t.Errorf("Op = %q, want %q", pathErr.Op, "stat")
		}
	})
}

func TestChecksum(t *testing.T) {
	ctx := context.Background()

	t.Run("prefers the native implementation", func(t *testing.T) {
		d := &fakeChecksumDriver{fakeDriver: newFakeDriver()}
		f := New(d)

		sum, err := f.Checksum(ctx, "a.txt", ChecksumSHA256)
		if err != nil {
			t.Fatalf("Checksum() error = %v", err)
		}
		if sum != "native" {
			t.Errorf("Checksum() = %q, want %q", sum, "native")
		}
		if d.lastCall() != "checksum a.txt" {
			t.Errorf("driver last call = %q, want %q", d.lastCall(), "checksum a.txt")
		}
	})

	t.Run("falls back to reading the file", func(t *testing.T) {
		d := newFakeDriver()
		d.data["a.txt"] = []byte("hello world")
		f := New(d)

		sum, err := f.Checksum(ctx, "a.txt", ChecksumSHA256)
		if err != nil {
			t.Fatalf("Checksum() error = %v", err)
		}
		want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
		if sum != want {
			t.Errorf("Checksum() = %q, want %q", sum, want)
		}
		if d.lastCall() != "read a.txt" {
			t.Errorf("driver last call = %q, want %q", d.lastCall(), "read a.txt")
		}
	})

	t.Run("fallback propagates read errors", func(t *testing.T) {
		f := New(newFakeDriver())

		_, err := f.Checksum(ctx, "missing.txt", ChecksumSHA256)
		if !IsNotExist(err) {
			t.Errorf("Checksum() error = %v, want not exist", err)
		}
	})
}

func TestChecksums(t *testing.T) {
	ctx := context.Background()

	t.Run("prefers the native implementation", func(t *testing.T) {
		d := &fakeChecksumDriver{fakeDriver: newFakeDriver()}
		f := New(d)

		sums, err := f.Checksums(ctx, "a.txt", []ChecksumAlgorithm{ChecksumMD5, ChecksumCRC32})
		if err != nil {
			t.Fatalf("Checksums() error = %v", err)
		}
		if len(sums) != 2 {
			t.Fatalf("Checksums() returned %d entries, want 2", len(sums))
		}
		if sums[ChecksumMD5] != "native" || sums[ChecksumCRC32] != "native" {
			t.Errorf("Checksums() = %v, want native markers", sums)
		}
	})

	t.Run("falls back to reading the file", func(t *testing.T) {
		d := newFakeDriver()
		d.data["a.txt"] = []byte("hello world")
		f := New(d)

		sums, err := f.Checksums(ctx, "a.txt", []ChecksumAlgorithm{ChecksumMD5, ChecksumCRC32})
		if err != nil {
			t.Fatalf("Checksums() error = %v", err)
		}
		if sums[ChecksumMD5] != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
			t.Errorf("MD5 = %q, want %q", sums[ChecksumMD5], "5eb63bbbe01eeed093cb22bb8f5acdc3")
		}
		if sums[ChecksumCRC32] != "0d4a1185" {
			t.Errorf("CRC32 = %q, want %q", sums[ChecksumCRC32], "0d4a1185")
		}
	})

	t.Run("fallback propagates read errors", func(t *testing.T) {
		f := New(newFakeDriver())

		_, err := f.Checksums(ctx, "missing.txt", []ChecksumAlgorithm{ChecksumMD5})
		if !IsNotExist(err) {
			t.Errorf("Checksums() error = %v, want not exist", err)
		}
	})
}
