package fskit_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gobeaver/fskit"
	_ "github.com/gobeaver/fskit/driver/local"
	"github.com/gobeaver/fskit/driver/memory"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory driver end to end", func(t *testing.T) {
		f, err := fskit.Open(&fskit.Config{Driver: "memory"})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}

		if err := f.Append(ctx, "notes.txt", []byte("first line\n")); err != nil {
			t.Fatalf("Append() error = %v", err)
		}

		content, err := f.Read(ctx, "notes.txt")
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if string(content) != "first line\n" {
			t.Errorf("Read() = %q, want %q", content, "first line\n")
		}
	})

	t.Run("local driver end to end", func(t *testing.T) {
		root := t.TempDir()

		f, err := fskit.Open(&fskit.Config{Driver: "local", LocalRoot: root})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}

		if err := f.Append(ctx, "notes.txt", []byte("hello")); err != nil {
			t.Fatalf("Append() error = %v", err)
		}

		// The write must land under the configured root
		raw, err := os.ReadFile(filepath.Join(root, "notes.txt"))
		if err != nil {
			t.Fatalf("reading raw file: %v", err)
		}
		if string(raw) != "hello" {
			t.Errorf("raw content = %q, want %q", raw, "hello")
		}
	})

	t.Run("driver creation failure is wrapped", func(t *testing.T) {
		// A regular file where the root should be makes local.New fail
		occupied := filepath.Join(t.TempDir(), "occupied")
		if err := os.WriteFile(occupied, []byte("x"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := fskit.Open(&fskit.Config{Driver: "local", LocalRoot: occupied})
		if err == nil {
			t.Fatal("Open() error = nil, want error")
		}
		if !strings.Contains(err.Error(), "failed to create driver") {
			t.Errorf("Open() error = %v, want create driver wrapper", err)
		}
	})
}

func TestGlobalFacade(t *testing.T) {
	ctx := context.Background()

	fskit.Reset()
	t.Cleanup(fskit.Reset)

	os.Setenv("BEAVER_FSKIT_DRIVER", "memory")
	t.Cleanup(func() { os.Unsetenv("BEAVER_FSKIT_DRIVER") })

	if err := fskit.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	f1, err := fskit.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	f2, err := fskit.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if f1 != f2 {
		t.Error("Default() returned different instances")
	}

	if err := f1.Append(ctx, "global.txt", []byte("shared")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if !f2.Exists(ctx, "global.txt") {
		t.Error("file written through one handle is missing through the other")
	}

	fskit.Reset()
	f3, err := fskit.Default()
	if err != nil {
		t.Fatalf("Default() after Reset error = %v", err)
	}
	if f3 == nil {
		t.Fatal("Default() returned nil after Reset")
	}
	if f3.Exists(ctx, "global.txt") {
		t.Error("Reset did not produce a fresh backend")
	}
}

func TestInitWithExplicitConfig(t *testing.T) {
	fskit.Reset()
	t.Cleanup(fskit.Reset)

	if err := fskit.Init(&fskit.Config{Driver: "memory"}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	f, err := fskit.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if f == nil {
		t.Fatal("Default() returned nil")
	}

	// A second Init is a no-op on an already-initialized global
	if err := fskit.Init(&fskit.Config{Driver: "local", LocalRoot: t.TempDir()}); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	f2, err := fskit.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if f != f2 {
		t.Error("second Init() replaced the global facade")
	}
}

func TestFromEnv(t *testing.T) {
	os.Setenv("BEAVER_FSKIT_DRIVER", "memory")
	t.Cleanup(func() { os.Unsetenv("BEAVER_FSKIT_DRIVER") })

	f1, err := fskit.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	f2, err := fskit.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if f1 == f2 {
		t.Error("FromEnv() should build a fresh facade per call")
	}
}

func TestWithDriverAcrossBackends(t *testing.T) {
	ctx := context.Background()

	f, err := fskit.Open(&fskit.Config{Driver: "local", LocalRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	scratch := memory.New()
	if err := f.WithDriver(scratch).Append(ctx, "scratch.txt", []byte("volatile")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if !scratch.Exists(ctx, "scratch.txt") {
		t.Error("write did not reach the substituted driver")
	}
	if f.Exists(ctx, "scratch.txt") {
		t.Error("write leaked into the default driver")
	}
}
