// Package cpu implements the tick-based fetch/dispatch loop that executes
// one scheduling quantum's worth of instructions against a resident page.
//
// What: holds the frame/offset/instruction-register state the reference
// kernel keeps as global CPU registers, and advances it one instruction at
// a time for up to Quantum ticks.
// How: grounded on the reference kernel's cpu_run loop; rewritten as a
// value the scheduler owns per kernel rather than a process-global, per
// the kernel-value-grouping redesign recorded in DESIGN.md.
package cpu

import "fmt"

// Outcome classifies how a quantum ended.
type Outcome int

const (
	// OK means the quantum elapsed with slots still left in the resident
	// page, or a dispatched line asked the script to quit.
	OK Outcome = iota
	// EndOfFrame means execution reached the end of the resident page: the
	// offset reached the page size, or the next slot is unoccupied.
	EndOfFrame
	// Errored means the CPU was asked to run from a negative frame or from
	// an offset outside [0, page size]; a page's unfilled trailing slots are
	// not this, they end the frame instead (see Run).
	Errored
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "OK"
	case EndOfFrame:
		return "END_OF_FRAME"
	case Errored:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// RAM is the minimal read surface cpu needs; ramdisk.RAM satisfies it without
// cpu importing ramdisk, keeping the package's only real dependency its own
// instruction fetch logic.
type RAM interface {
	Get(i int) (string, bool)
	PageSize() int
}

// Dispatcher executes one fetched instruction line and reports whether it
// requested the running script quit. Satisfied structurally by
// interpreter.Interpreter, so cpu never imports interpreter.
type Dispatcher interface {
	Dispatch(line string) (quitScript bool)
}

// CPU holds the fetch/dispatch register set: the resident frame, the offset
// within it, and the last fetched instruction.
type CPU struct {
	ram    RAM
	Frame  int
	Offset int
	IR     string
}

// New returns a CPU that fetches instructions from ram.
func New(ram RAM) *CPU {
	return &CPU{ram: ram}
}

// LoadContext sets the frame and offset the next Run call resumes from. The
// scheduler calls this once per dispatch, restoring a PCB's PC_page (mapped
// to its resident frame) and PC_offset.
func (c *CPU) LoadContext(frame, offset int) {
	c.Frame = frame
	c.Offset = offset
}

// Run executes up to quantum instructions, dispatching each fetched line to
// d. It stops early, before quantum ticks, only on EndOfFrame, on Errored, or
// on a script requesting quit (reported via the bool return). Offset is left
// at the next slot to execute; the caller (the scheduler) reads it back into
// the PCB before re-enqueuing.
func (c *CPU) Run(d Dispatcher, quantum int) (Outcome, bool, error) {
	pageSize := c.ram.PageSize()
	for t := 0; t < quantum; t++ {
		if c.Frame < 0 || c.Offset < 0 || c.Offset > pageSize {
			return Errored, false, fmt.Errorf("invalid fetch position: frame %d, offset %d", c.Frame, c.Offset)
		}
		if c.Offset >= pageSize {
			return EndOfFrame, false, nil
		}
		line, occupied := c.ram.Get(c.Frame*pageSize + c.Offset)
		if !occupied {
			// The script's last page fills fewer than pageSize slots; an
			// unoccupied slot before pageSize marks the end of the script's
			// instructions, not a fetch failure.
			return EndOfFrame, false, nil
		}
		c.IR = line
		c.Offset++
		if d.Dispatch(line) {
			return OK, true, nil
		}
	}
	if c.Offset >= pageSize {
		return EndOfFrame, false, nil
	}
	return OK, false, nil
}
