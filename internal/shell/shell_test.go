package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kernelsim/mykernel/internal/interpreter"
	"github.com/kernelsim/mykernel/internal/shellmemory"
)

type stubLauncher struct{}

func (stubLauncher) Exec(files []string) error { return nil }
func (stubLauncher) Abort() error              { return nil }

func TestRunStopsOnQuit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	if err := os.WriteFile(path, []byte("set a 1\nquit\nset b 2\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open input: %v", err)
	}
	defer f.Close()

	var out bytes.Buffer
	mem := shellmemory.New(16)
	interp := interpreter.New(mem, stubLauncher{}, 200, &out)
	sh := New(f, &out, interp)
	sh.Run()

	if v, ok := mem.Get("a"); !ok || v != "1" {
		t.Fatalf("a = %q, %v, want 1, true", v, ok)
	}
	if _, ok := mem.Get("b"); ok {
		t.Fatal("b should never be set; quit should have stopped the loop first")
	}
	if !strings.Contains(out.String(), "Bye!") {
		t.Fatalf("output = %q, want a Bye! from quit", out.String())
	}
}

func TestRunStopsAtEOFWithoutQuit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	if err := os.WriteFile(path, []byte("set a 1\nset b 2\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open input: %v", err)
	}
	defer f.Close()

	var out bytes.Buffer
	mem := shellmemory.New(16)
	interp := interpreter.New(mem, stubLauncher{}, 200, &out)
	sh := New(f, &out, interp)
	sh.Run()

	if v, ok := mem.Get("b"); !ok || v != "2" {
		t.Fatalf("b = %q, %v, want 2, true", v, ok)
	}
	if !strings.Contains(out.String(), "Redirection finished!") {
		t.Fatalf("output = %q, want Redirection finished! for non-tty input", out.String())
	}
}
