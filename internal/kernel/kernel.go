// Package kernel assembles RAM, the backing store, the paging memory
// manager, the ready queue, the CPU, the scheduler, shell memory, and the
// interpreter into one bootable unit, and implements the 'exec' launcher
// the interpreter calls into.
//
// Grounded on the reference kernel's boot()/shutDown()/kernel() in kernel.c
// and the exec()/launcher() pipeline split across interpreter.c and
// memorymanager.c. The reference kept CPU, RAM, the ready queue, the PID
// counter, and the quit flags as process-wide globals; Kernel groups them
// into one value so more than one kernel can exist in the same process,
// which is what lets every package here be tested in isolation.
package kernel

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kernelsim/mykernel/internal/backingstore"
	"github.com/kernelsim/mykernel/internal/cpu"
	"github.com/kernelsim/mykernel/internal/diagnostics"
	"github.com/kernelsim/mykernel/internal/interpreter"
	"github.com/kernelsim/mykernel/internal/kernelconfig"
	"github.com/kernelsim/mykernel/internal/kernelerrs"
	"github.com/kernelsim/mykernel/internal/memmgr"
	"github.com/kernelsim/mykernel/internal/proc"
	"github.com/kernelsim/mykernel/internal/ramdisk"
	"github.com/kernelsim/mykernel/internal/scheduler"
	"github.com/kernelsim/mykernel/internal/shellmemory"
)

// Kernel is the process-wide state the reference kernel kept as separate
// globals: RAM, the backing store, the ready queue, the CPU, and the shell
// memory all live here, scoped to one bootable instance.
type Kernel struct {
	cfg kernelconfig.Config

	ram   *ramdisk.RAM
	store *backingstore.Store
	mm    *memmgr.Manager
	rq    *proc.ReadyQueue
	cpu   *cpu.CPU
	sched *scheduler.Scheduler

	shellMem *shellmemory.Memory
	interp   *interpreter.Interpreter
	diag     *diagnostics.Reporter
	logger   *log.Logger
}

// New assembles a Kernel from cfg and creates its backing store directory
// fresh, removing any previous directory of that name. It starts no
// background work; call Boot for that.
func New(cfg kernelconfig.Config) (*Kernel, error) {
	store, err := backingstore.Open(cfg.BackingStoreDir)
	if err != nil {
		return nil, fmt.Errorf("open backing store: %w", err)
	}

	ram := ramdisk.New(cfg.RAMFrames, cfg.PageSize)
	mm := memmgr.New(store, cfg.PageSize, cfg.RAMFrames, time.Now().UnixNano())
	rq := &proc.ReadyQueue{}
	cpuUnit := cpu.New(ram)
	logger := log.New(os.Stdout, "", log.LstdFlags)
	sched := scheduler.New(ram, mm, cpuUnit, cfg.Quantum, logger)
	shellMem := shellmemory.New(cfg.ShellMemoryCapacity)

	k := &Kernel{
		cfg:      cfg,
		ram:      ram,
		store:    store,
		mm:       mm,
		rq:       rq,
		cpu:      cpuUnit,
		sched:    sched,
		shellMem: shellMem,
		logger:   logger,
	}
	k.interp = interpreter.New(shellMem, k, cfg.ScriptStackDepth, os.Stdout)
	k.diag = diagnostics.New(ram, rq, store, cfg.DiagnosticsInterval, logger)
	return k, nil
}

// Boot starts background diagnostics reporting and logs the reference
// kernel's startup banner.
func (k *Kernel) Boot() error {
	k.logger.Println("Kernel loaded!")
	return k.diag.Start()
}

// Shutdown stops diagnostics and removes the backing store, mirroring the
// reference kernel's shutDown().
func (k *Kernel) Shutdown() error {
	k.diag.Stop()
	k.logger.Println("Exiting kernel...")
	return k.store.Close()
}

// Interpreter returns the kernel's bound interpreter, for the shell
// front-end to dispatch interactively typed lines against.
func (k *Kernel) Interpreter() *interpreter.Interpreter {
	return k.interp
}

// Exec loads each of files into its own PCB via the paging memory manager,
// runs all of them to completion under round-robin scheduling, and clears
// RAM and the ready queue once the batch finishes. It implements
// interpreter.Launcher.
//
// Every file's existence is checked up front, before any paging work
// begins, matching the reference exec()'s all-or-nothing existence check.
func (k *Kernel) Exec(files []string) error {
	for _, name := range files {
		if _, err := os.Stat(name); err != nil {
			return &kernelerrs.NotFoundError{Name: name}
		}
	}

	batchID := uuid.New().String()
	k.logger.Printf("exec %s: loading %v", batchID, files)

	for _, name := range files {
		if err := k.load(name); err != nil {
			k.clearAll()
			k.logger.Printf("exec %s: failed to load %s: %v", batchID, name, err)
			return err
		}
	}

	k.sched.Run(k.rq, k.interp)
	k.clearAll()
	k.logger.Printf("exec %s: batch finished", batchID)
	return nil
}

// load paginates name, creates its PCB, preloads min(2, pages_max) pages,
// and enqueues it. Grounded on the reference launcher().
func (k *Kernel) load(name string) error {
	pid, pagesMax, err := k.mm.Paginate(name, k.cfg.InstructionMaxLen)
	if err != nil {
		if errors.Is(err, memmgr.ErrTooLarge) {
			return &kernelerrs.TooLargeError{Name: name, RAMSize: k.cfg.RAMSize()}
		}
		return fmt.Errorf("paginate %q: %w", name, err)
	}

	p := proc.New(pid, pagesMax)
	toLoad := min(2, pagesMax)
	for i := 0; i < toLoad; i++ {
		if err := k.mm.Fault(k.ram, k.rq, p, i); err != nil {
			return &kernelerrs.NoVictimError{Name: name}
		}
	}
	k.rq.Enqueue(p)
	return nil
}

// Abort clears RAM and the ready queue outright. Used when the interpreter's
// script-recursion depth overflows, matching the reference's
// stopAllScripts().
func (k *Kernel) Abort() error {
	k.logger.Printf("%v; clearing ram and ready queue", kernelerrs.ErrStackFull)
	k.clearAll()
	return nil
}

func (k *Kernel) clearAll() {
	k.ram.ClearAll()
	k.rq.Clear(func(*proc.PCB) {})
}
