package backingstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenCreatesEmptyDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected %q to be a directory", dir)
	}
}

func TestOpenRemovesStaleContent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	stale := filepath.Join(dir, "1.0.txt")
	if err := os.WriteFile(stale, []byte("leftover"), 0o644); err != nil {
		t.Fatalf("write stale file: %v", err)
	}

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("stale content should be removed on Open")
	}
}

func TestCreateAndReadPageLines(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "store"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	f, err := s.CreatePage(7, 0)
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	f.WriteString("set a 1\nset b 2")
	f.Close()

	lines, err := s.ReadPageLines(7, 0, 4)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if len(lines) != 2 || lines[0] != "set a 1" || lines[1] != "set b 2" {
		t.Fatalf("lines = %v, want [set a 1, set b 2]", lines)
	}
}

func TestReadPageLinesRespectsMaxLines(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "store"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	f, _ := s.CreatePage(1, 0)
	f.WriteString("a\nb\nc\n")
	f.Close()

	lines, err := s.ReadPageLines(1, 0, 2)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %v, want exactly 2 (maxLines cap)", lines)
	}
}

func TestCloseRemovesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("store directory should be removed after Close")
	}
}
