// Package proc implements the process control block and the ready queue
// that the scheduler and paging memory manager share.
package proc

import "github.com/kernelsim/mykernel/internal/ramdisk"

// NotResident is the page-table sentinel meaning "this page has no frame".
const NotResident = -1

// PID identifies a process uniquely within a kernel session.
type PID int

// PCB is the per-script execution state: identity, program counter (page +
// offset), and a private page table.
type PCB struct {
	PID       PID
	PagesMax  int
	PageTable []int // PageTable[i] is a frame number or NotResident.
	PCPage    int
	PCOffset  int
}

// New returns a PCB with PC_page = PC_offset = 0 and every page-table entry
// NOT_RESIDENT. pagesMax must satisfy 1 <= pagesMax <= F, enforced by the
// caller (the memory manager's pagination step).
func New(pid PID, pagesMax int) *PCB {
	pt := make([]int, pagesMax)
	for i := range pt {
		pt[i] = NotResident
	}
	return &PCB{PID: pid, PagesMax: pagesMax, PageTable: pt}
}

// Resident reports whether page i currently has a frame and returns it.
func (p *PCB) Resident(i int) (int, bool) {
	f := p.PageTable[i]
	return f, f != NotResident
}

// Owns reports whether frame is listed anywhere in the PCB's page table.
func (p *PCB) Owns(frame int) bool {
	for _, f := range p.PageTable {
		if f == frame {
			return true
		}
	}
	return false
}

// Finished reports whether the PCB has executed past its last page.
func (p *PCB) Finished() bool {
	return p.PCPage > p.PagesMax-1
}

// Destroy releases every frame this PCB still holds back to ram and marks
// the whole page table NOT_RESIDENT. Called on every termination path
// (finished, quit, or errored) so a dead PCB never leaves a frame looking
// occupied with no ready-queue owner left to claim it.
func (p *PCB) Destroy(ram *ramdisk.RAM) {
	for i, f := range p.PageTable {
		if f != NotResident {
			ram.ClearFrame(f)
			p.PageTable[i] = NotResident
		}
	}
}
