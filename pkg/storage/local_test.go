package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func newTestTree(t *testing.T, files map[string][]byte) string {
	t.Helper()

	dir := t.TempDir()
	for path, content := range files {
		fullPath := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(fullPath, content, 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
	return dir
}

func TestNewLocal(t *testing.T) {
	t.Run("ValidDirectory", func(t *testing.T) {
		dir := t.TempDir()

		local, err := NewLocal(dir)
		if err != nil {
			t.Fatalf("NewLocal() error = %v", err)
		}
		defer local.Close()

		if local.Root() == "" {
			t.Error("Root() should return the resolved root path")
		}
	})

	t.Run("NonExistentPath", func(t *testing.T) {
		if _, err := NewLocal("/nonexistent/path/that/does/not/exist"); err == nil {
			t.Error("NewLocal() should fail for non-existent path")
		}
	})

	t.Run("FileNotDirectory", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "plain.txt")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}

		if _, err := NewLocal(file); err == nil {
			t.Error("NewLocal() should fail for a file path")
		}
	})
}

func TestLocalWalk(t *testing.T) {
	dir := newTestTree(t, map[string][]byte{
		"file1.txt":        []byte("content1"),
		"subdir/file2.txt": []byte("content2"),
		"subdir/file3.txt": []byte("longer content3"),
	})

	local, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	defer local.Close()

	t.Run("VisitsRegularFilesOnly", func(t *testing.T) {
		var visited []string
		err := local.Walk(context.Background(), func(info FileInfo) error {
			visited = append(visited, info.RelativePath)
			return nil
		}, nil)
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		if len(visited) != 3 {
			t.Errorf("Walk() visited %d files, want 3: %v", len(visited), visited)
		}
		for _, rel := range visited {
			if rel == "." || rel == "subdir" {
				t.Errorf("Walk() should not visit directories, got %s", rel)
			}
		}
	})

	t.Run("ReportsMetadata", func(t *testing.T) {
		var got *FileInfo
		err := local.Walk(context.Background(), func(info FileInfo) error {
			if info.RelativePath == filepath.Join("subdir", "file3.txt") {
				captured := info
				got = &captured
			}
			return nil
		}, nil)
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		if got == nil {
			t.Fatal("expected subdir/file3.txt to be visited")
		}
		if got.Size != int64(len("longer content3")) {
			t.Errorf("Size = %d, want %d", got.Size, len("longer content3"))
		}
	})

	t.Run("ContextCancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := local.Walk(ctx, func(info FileInfo) error { return nil }, nil)
		if err == nil {
			t.Error("Walk() should fail with cancelled context")
		}
	})
}

func TestLocalWrite(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	defer local.Close()

	ctx := context.Background()

	t.Run("CreatesIntermediateDirectories", func(t *testing.T) {
		content := []byte("hello")
		err := local.Write(ctx, filepath.Join("a", "b", "c.txt"), bytes.NewReader(content), int64(len(content)), nil)
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		data, err := os.ReadFile(filepath.Join(dir, "a", "b", "c.txt"))
		if err != nil {
			t.Fatalf("failed to read written file: %v", err)
		}
		if !bytes.Equal(data, content) {
			t.Errorf("written content = %q, want %q", data, content)
		}
	})

	t.Run("PreservesModTime", func(t *testing.T) {
		content := []byte("timed")
		mod := time.Date(2023, 6, 15, 10, 30, 0, 0, time.Local)
		meta := &FileInfo{ModTime: mod}

		if err := local.Write(ctx, "timed.txt", bytes.NewReader(content), int64(len(content)), meta); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		info, err := os.Stat(filepath.Join(dir, "timed.txt"))
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if !info.ModTime().Equal(mod) {
			t.Errorf("ModTime = %v, want %v", info.ModTime(), mod)
		}
	})

	t.Run("SizeMismatch", func(t *testing.T) {
		content := []byte("short")
		err := local.Write(ctx, "mismatch.txt", bytes.NewReader(content), 100, nil)
		if err == nil {
			t.Error("Write() should fail on incomplete write")
		}
	})

	t.Run("OverwritesExisting", func(t *testing.T) {
		first := []byte("first version")
		second := []byte("second")

		if err := local.Write(ctx, "over.txt", bytes.NewReader(first), int64(len(first)), nil); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := local.Write(ctx, "over.txt", bytes.NewReader(second), int64(len(second)), nil); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		data, _ := os.ReadFile(filepath.Join(dir, "over.txt"))
		if !bytes.Equal(data, second) {
			t.Errorf("content = %q, want %q", data, second)
		}
	})
}

func TestLocalBufferSize(t *testing.T) {
	t.Run("SmallBufferCopiesIntact", func(t *testing.T) {
		dir := t.TempDir()
		local, err := NewLocalBuffered(dir, 1024)
		if err != nil {
			t.Fatalf("NewLocalBuffered() error = %v", err)
		}
		defer local.Close()

		// Content spans several buffer refills
		content := bytes.Repeat([]byte("driftscan"), 1500)
		if err := local.Write(context.Background(), "big.bin", bytes.NewReader(content), int64(len(content)), nil); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		data, err := os.ReadFile(filepath.Join(dir, "big.bin"))
		if err != nil {
			t.Fatalf("failed to read written file: %v", err)
		}
		if !bytes.Equal(data, content) {
			t.Errorf("written %d bytes, want %d", len(data), len(content))
		}
	})

	t.Run("ZeroFallsBackToDefault", func(t *testing.T) {
		local, err := NewLocalBuffered(t.TempDir(), 0)
		if err != nil {
			t.Fatalf("NewLocalBuffered() error = %v", err)
		}
		defer local.Close()

		if local.bufferSize != DefaultBufferSize {
			t.Errorf("bufferSize = %d, want %d", local.bufferSize, DefaultBufferSize)
		}
	})
}

func TestLocalWalkInaccessibleEntries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on Windows")
	}
	if os.Getuid() == 0 {
		t.Skip("running as root, permissions are not enforced")
	}

	dir := newTestTree(t, map[string][]byte{
		"ok.txt":            []byte("readable"),
		"locked/secret.txt": []byte("hidden"),
	})

	locked := filepath.Join(dir, "locked")
	if err := os.Chmod(locked, 0000); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	local, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	defer local.Close()

	var visited []string
	var reported []string
	err = local.Walk(context.Background(), func(info FileInfo) error {
		visited = append(visited, info.RelativePath)
		return nil
	}, func(path string, err error) {
		reported = append(reported, path)
	})
	if err != nil {
		t.Fatalf("Walk() should not abort on an inaccessible entry: %v", err)
	}

	if len(visited) != 1 || visited[0] != "ok.txt" {
		t.Errorf("Walk() visited %v, want only ok.txt", visited)
	}
	if len(reported) == 0 {
		t.Error("inaccessible entry should be reported through onError")
	}
}

func TestLocalReadStat(t *testing.T) {
	dir := newTestTree(t, map[string][]byte{"doc.txt": []byte("document")})
	local, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	defer local.Close()

	ctx := context.Background()

	t.Run("Read", func(t *testing.T) {
		rc, err := local.Read(ctx, "doc.txt")
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if string(data) != "document" {
			t.Errorf("content = %q, want %q", data, "document")
		}
	})

	t.Run("ReadMissing", func(t *testing.T) {
		if _, err := local.Read(ctx, "absent.txt"); err == nil {
			t.Error("Read() should fail for missing file")
		}
	})

	t.Run("Stat", func(t *testing.T) {
		info, err := local.Stat(ctx, "doc.txt")
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if info.Size != int64(len("document")) {
			t.Errorf("Size = %d, want %d", info.Size, len("document"))
		}
		if info.RelativePath != "doc.txt" {
			t.Errorf("RelativePath = %s, want doc.txt", info.RelativePath)
		}
	})
}
