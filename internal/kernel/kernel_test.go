package kernel

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kernelsim/mykernel/internal/interpreter"
	"github.com/kernelsim/mykernel/internal/kernelconfig"
	"github.com/kernelsim/mykernel/internal/kernelerrs"
)

func newTestKernel(t *testing.T) *Kernel {
	t.Helper()
	cfg := kernelconfig.Default()
	cfg.BackingStoreDir = filepath.Join(t.TempDir(), "BackingStore")
	cfg.DiagnosticsInterval = time.Hour // never fires during a test
	cfg.PageSize = 2
	cfg.RAMFrames = 4
	cfg.Quantum = 2

	k, err := New(cfg)
	if err != nil {
		t.Fatalf("new kernel: %v", err)
	}
	t.Cleanup(func() { k.Shutdown() })
	return k
}

func writeScript(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.txt")
	content := ""
	for i, l := range lines {
		content += l
		if i != len(lines)-1 {
			content += "\n"
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestBootShutdownRoundTrip(t *testing.T) {
	k := newTestKernel(t)
	if err := k.Boot(); err != nil {
		t.Fatalf("boot: %v", err)
	}
	if _, err := os.Stat(k.store.Dir()); err != nil {
		t.Fatalf("backing store should exist after boot: %v", err)
	}
	if err := k.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if _, err := os.Stat(k.store.Dir()); !os.IsNotExist(err) {
		t.Fatal("backing store should be removed after shutdown")
	}
}

func TestExecRunsScriptToCompletion(t *testing.T) {
	k := newTestKernel(t)
	path := writeScript(t, []string{"set a 1", "set b 2", "quit"})

	if err := k.Exec([]string{path}); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if v, ok := k.shellMem.Get("a"); !ok || v != "1" {
		t.Fatalf("a = %q, %v, want 1, true", v, ok)
	}
	if v, ok := k.shellMem.Get("b"); !ok || v != "2" {
		t.Fatalf("b = %q, %v, want 2, true", v, ok)
	}
	if k.rq.Len() != 0 {
		t.Fatal("ready queue should be empty after exec finishes")
	}
	if k.ram.OccupiedFrames() != 0 {
		t.Fatal("ram should be cleared after exec finishes")
	}
}

func TestExecMissingFileReturnsNotFoundError(t *testing.T) {
	k := newTestKernel(t)
	err := k.Exec([]string{"/no/such/file.txt"})
	var notFound *kernelerrs.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want *kernelerrs.NotFoundError", err)
	}
}

func TestExecTooLargeScriptReturnsTooLargeError(t *testing.T) {
	k := newTestKernel(t)
	// PageSize=2, RAMFrames=4 means the RAM holds 8 instructions; a 9-line
	// script needs 5 pages, more than RAM has frames.
	lines := make([]string, 9)
	for i := range lines {
		lines[i] = "noop"
	}
	path := writeScript(t, lines)

	err := k.Exec([]string{path})
	var tooLarge *kernelerrs.TooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("err = %v, want *kernelerrs.TooLargeError", err)
	}
}

func TestExecRunsConcurrentScriptsToCompletion(t *testing.T) {
	k := newTestKernel(t)
	// RAMFrames=4: three 1-page scripts fit without any eviction, and all
	// three should run to completion regardless of load order.
	p1 := writeScript(t, []string{"set a 1"})
	p2 := writeScript(t, []string{"set b 2"})
	p3 := writeScript(t, []string{"set c 3"})

	if err := k.Exec([]string{p1, p2, p3}); err != nil {
		t.Fatalf("exec: %v", err)
	}
	for name, want := range map[string]string{"a": "1", "b": "2", "c": "3"} {
		if v, ok := k.shellMem.Get(name); !ok || v != want {
			t.Fatalf("%s = %q, %v, want %q, true", name, v, ok, want)
		}
	}
}

func TestNestedExecFromWithinExecIsRejected(t *testing.T) {
	k := newTestKernel(t)
	dir := t.TempDir()
	inner := filepath.Join(dir, "inner.txt")
	os.WriteFile(inner, []byte("set deep 1\n"), 0o644)
	outer := filepath.Join(dir, "outer.txt")
	os.WriteFile(outer, []byte("exec "+inner+"\nset shallow 1\n"), 0o644)

	// Enter through the interpreter, as the shell does, so the outer script
	// runs inside an 'exec' and its own 'exec' line meets the nesting guard.
	if out := k.Interpreter().DispatchLine("exec " + outer); out != interpreter.Continue {
		t.Fatalf("exec outcome = %v, want Continue", out)
	}
	if _, ok := k.shellMem.Get("deep"); ok {
		t.Fatal("nested exec should have been rejected, 'deep' should never be set")
	}
	if _, ok := k.shellMem.Get("shallow"); !ok {
		t.Fatal("the outer script should keep running after the rejected nested exec")
	}
}
