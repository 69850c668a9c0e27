// Package memmgr implements the paging memory manager: frame allocation,
// victim selection, page-in from the backing store, and page-table
// maintenance across every live PCB.
//
// What: splits a script file into on-disk pages, loads pages into RAM
// frames on demand, and evicts a victim frame when RAM is full.
// How: first-fit frame scan; when no frame is free, a bounded circular
// probe (seeded randomly) picks a frame the faulting PCB does not itself
// own. Adapted from the reference kernel's findFrame/findVictim and from
// the teacher's LRU eviction in bufferpool.go and PageBufferPool.evictOne,
// simplified here to the self-exclusion policy the spec requires rather
// than LRU (see DESIGN.md).
// Why: keeps RAM a bounded cache over an unbounded backing store without
// needing real virtual memory hardware.
package memmgr

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/kernelsim/mykernel/internal/backingstore"
	"github.com/kernelsim/mykernel/internal/proc"
	"github.com/kernelsim/mykernel/internal/ramdisk"
)

// ErrNoVictim means a page fault found no free frame and no evictable frame
// that isn't owned by the faulting PCB (it already owns every frame).
var ErrNoVictim = errors.New("no victim frame could be found")

// ErrTooLarge means pagination determined the script needs more pages than
// RAM has frames.
var ErrTooLarge = errors.New("script has more instructions than RAM can hold")

// Manager owns the PID counter and the RNG used for victim selection.
// Reimplementations may substitute any self-excluding policy (random, FIFO,
// clock); this one documents its choice rather than hiding it.
type Manager struct {
	store     *backingstore.Store
	pageSize  int
	numFrames int
	lastPID   int
	rng       *rand.Rand
}

// New returns a Manager bound to store, with the given page size (P) and
// frame count (F).
func New(store *backingstore.Store, pageSize, numFrames int, seed int64) *Manager {
	return &Manager{
		store:     store,
		pageSize:  pageSize,
		numFrames: numFrames,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// nextPID returns the next monotonic PID, never reused within this Manager's
// lifetime.
func (m *Manager) nextPID() proc.PID {
	m.lastPID++
	return proc.PID(m.lastPID)
}

// FindFreeFrame performs a first-fit scan of RAM frames and returns the
// lowest frame whose first slot is empty.
func FindFreeFrame(ram *ramdisk.RAM) (int, bool) {
	for f := 0; f < ram.NumFrames(); f++ {
		if !ram.FrameFirstOccupied(f) {
			return f, true
		}
	}
	return -1, false
}

// FindVictim picks a frame not owned by p. It seeds a candidate uniformly at
// random then advances by a fixed step, bounded to F probes — the
// guaranteed-progress replacement for the reference kernel's
// victim = victim % F; victim++ sequence, which could walk one past the end
// of RAM under repeated misses (design note (b)).
func (m *Manager) FindVictim(ram *ramdisk.RAM, p *proc.PCB) (int, bool) {
	F := ram.NumFrames()
	if F == 0 {
		return -1, false
	}

	v := m.rng.Intn(F)
	for i := 0; i < F; i++ {
		v = (v + 1) % F
		if !p.Owns(v) {
			return v, true
		}
	}
	return -1, false
}

// UpdatePageTable records that page pageIndex of p now resides in frame. If
// isVictim is true, it first walks the ready queue to find whichever other
// PCB used to own frame and marks that PCB's page NOT_RESIDENT. This only
// runs for frames FindFreeFrame already ruled out as free, so frame is
// expected to still be owned by a live, ready-queued PCB; a terminated PCB
// releases its frames on destruction, so it never lingers as a stale owner
// here.
func UpdatePageTable(rq *proc.ReadyQueue, p *proc.PCB, pageIndex, frame int, isVictim bool) error {
	if isVictim {
		owner, j, found := rq.FindOwner(frame)
		if !found {
			return fmt.Errorf("victim frame %d has no recorded owner", frame)
		}
		owner.PageTable[j] = proc.NotResident
	}
	p.PageTable[pageIndex] = frame
	return nil
}

// LoadPage reads up to PageSize lines of "<PID>.<pageIndex>.txt" into frame,
// clearing any trailing slots the page does not fill.
func (m *Manager) LoadPage(ram *ramdisk.RAM, pid proc.PID, pageIndex, frame int) error {
	lines, err := m.store.ReadPageLines(int(pid), pageIndex, m.pageSize)
	if err != nil {
		return err
	}
	base := frame * m.pageSize
	for s := 0; s < m.pageSize; s++ {
		if s < len(lines) {
			ram.Set(base+s, lines[s])
		} else {
			ram.Clear(base + s)
		}
	}
	return nil
}

// Fault services a page fault for page pageIndex of p: it finds a free
// frame, or else a victim, loads the page into it, and updates every
// affected page table. It returns ErrNoVictim if neither a free nor a
// victim frame exists, which implies p already owns every frame in RAM.
func (m *Manager) Fault(ram *ramdisk.RAM, rq *proc.ReadyQueue, p *proc.PCB, pageIndex int) error {
	frame, ok := FindFreeFrame(ram)
	isVictim := false
	if !ok {
		frame, ok = m.FindVictim(ram, p)
		isVictim = true
	}
	if !ok {
		return ErrNoVictim
	}

	if err := m.LoadPage(ram, p.PID, pageIndex, frame); err != nil {
		return err
	}
	return UpdatePageTable(rq, p, pageIndex, frame, isVictim)
}
