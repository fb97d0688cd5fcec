// Package fskit provides a driver-abstracted filesystem facade for Go with
// swappable storage backends.
//
// FsKit follows interface segregation principles, providing separate
// interfaces for read-only ([Reader]) and write ([Writer]) operations,
// combined in the full [Driver] interface. The [FS] facade wraps a driver
// and exposes the complete operation set through one immutable value.
//
// # Basic Usage
//
//	import (
//	    "github.com/gobeaver/fskit"
//	    "github.com/gobeaver/fskit/driver/local"
//	)
//
//	d, err := local.New("./storage")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	f := fskit.New(d)
//
//	ctx := context.Background()
//
//	// Create a file, then overwrite it
//	err = f.Append(ctx, "hello.txt", []byte("Hello"))
//	err = f.Write(ctx, "hello.txt", []byte("Hello, World!"))
//
//	// Read it back
//	data, err := f.Read(ctx, "hello.txt")
//
//	// Check existence
//	if f.Exists(ctx, "hello.txt") {
//	    // ...
//	}
//
//	// List directory contents
//	names, err := f.ReadDir(ctx, "")
//
// # Drivers
//
// Two drivers ship with the package:
//
//   - Local filesystem (github.com/gobeaver/fskit/driver/local), rooted at
//     a base directory that paths cannot escape
//   - In-memory (github.com/gobeaver/fskit/driver/memory), for tests and
//     ephemeral storage
//
// Both implement the same [Driver] contract, so code written against the
// facade runs unchanged on either.
//
// # Rebinding Drivers
//
// [FS.WithDriver] returns a new facade bound to a different driver. The
// receiver is never modified, so a bound facade can be shared freely across
// goroutines:
//
//	base := fskit.New(localDriver)
//	scratch := base.WithDriver(memoryDriver)
//
//	base.Read(ctx, "a.txt")    // local
//	scratch.Read(ctx, "a.txt") // memory
//
// # Optional Capabilities
//
// Drivers may implement optional capability interfaces beyond the core
// operation set. Use type assertions to check for support:
//
//	// File metadata
//	if s, ok := d.(fskit.CanStat); ok {
//	    info, err := s.Stat(ctx, "file.txt")
//	}
//
//	// Checksums
//	if cs, ok := d.(fskit.CanChecksum); ok {
//	    hash, err := cs.Checksum(ctx, "file.txt", fskit.ChecksumSHA256)
//	}
//
// The facade's [FS.Stat], [FS.Checksum] and [FS.Checksums] methods perform
// these assertions for you, falling back to a full read plus in-process
// hashing for checksums when the driver has no native support.
//
// # Decorators
//
// [ReadOnly] wraps any driver and rejects every mutating operation:
//
//	f := fskit.New(fskit.NewReadOnly(d))
//	err := f.Delete(ctx, "file.txt") // fskit.IsReadOnlyError(err) == true
//
// # File Selection
//
// The [Selector] interface enables flexible file filtering over any driver:
//
//	// Simple glob pattern
//	files, err := fskit.Find(ctx, d, "", fskit.Glob("*.txt"), true)
//
//	// Composed selectors
//	selector := fskit.And(
//	    fskit.Glob("*.jpg"),
//	    fskit.FuncSelector(func(f *fskit.FileInfo) bool {
//	        return f.Size < 10*1024*1024 // Under 10MB
//	    }),
//	)
//	files, err := fskit.Find(ctx, d, "images", selector, true)
//
// # Error Handling
//
// FsKit provides sentinel errors and helper functions for error handling:
//
//	_, err := f.Read(ctx, "nonexistent.txt")
//	if fskit.IsNotExist(err) {
//	    // File does not exist
//	}
//
//	var pathErr *fskit.PathError
//	if errors.As(err, &pathErr) {
//	    fmt.Printf("Operation: %s, Path: %s\n", pathErr.Op, pathErr.Path)
//	}
//
// # Configuration
//
// FsKit can be configured via environment variables with the FSKIT_ prefix,
// or programmatically via the [Config] struct:
//
//	cfg := &fskit.Config{
//	    Driver:    "local",
//	    LocalRoot: "/var/data",
//	}
//	f, err := fskit.Open(cfg)
package fskit
