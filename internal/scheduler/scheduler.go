// Package scheduler implements round-robin dispatch of ready-queue PCBs
// onto a single CPU, servicing page faults as they're hit and terminating
// PCBs that finish, error, or ask to quit.
//
// Grounded on the reference kernel's scheduler() in kernel.c. The reference
// leaves the ERROR outcome as a bare "Do something" comment, silently
// looping the instruction forever; here ERROR logs and terminates the PCB,
// the redesigned behavior this kernel implements instead.
package scheduler

import (
	"log"

	"github.com/kernelsim/mykernel/internal/cpu"
	"github.com/kernelsim/mykernel/internal/memmgr"
	"github.com/kernelsim/mykernel/internal/proc"
	"github.com/kernelsim/mykernel/internal/ramdisk"
)

// Scheduler owns the single shared CPU and drives it across a ready queue.
type Scheduler struct {
	ram     *ramdisk.RAM
	mm      *memmgr.Manager
	cpu     *cpu.CPU
	quantum int
	logger  *log.Logger
}

// New returns a Scheduler that runs quantum instructions per PCB turn.
func New(ram *ramdisk.RAM, mm *memmgr.Manager, c *cpu.CPU, quantum int, logger *log.Logger) *Scheduler {
	return &Scheduler{ram: ram, mm: mm, cpu: c, quantum: quantum, logger: logger}
}

// Run dequeues and dispatches PCBs from rq, one quantum at a time, until rq
// is empty. d executes each fetched instruction (normally the interpreter
// bound to this kernel).
func (s *Scheduler) Run(rq *proc.ReadyQueue, d cpu.Dispatcher) {
	for {
		p := rq.Dequeue()
		if p == nil {
			return
		}
		s.runOne(rq, p, d)
	}
}

// runOne runs one scheduling turn for p and re-enqueues it unless it
// finished, errored, or asked to quit.
func (s *Scheduler) runOne(rq *proc.ReadyQueue, p *proc.PCB, d cpu.Dispatcher) {
	frame, resident := p.Resident(p.PCPage)
	if !resident {
		if err := s.mm.Fault(s.ram, rq, p, p.PCPage); err != nil {
			s.logger.Printf("pid %d: page fault servicing failed: %v; terminating", p.PID, err)
			p.Destroy(s.ram)
			return
		}
		frame, _ = p.Resident(p.PCPage)
	}

	s.cpu.LoadContext(frame, p.PCOffset)
	outcome, quit, err := s.cpu.Run(d, s.quantum)

	switch outcome {
	case cpu.Errored:
		s.logger.Printf("pid %d: instruction fetch failed: %v; terminating", p.PID, err)
		p.Destroy(s.ram)
		return
	case cpu.EndOfFrame:
		p.PCPage++
		p.PCOffset = 0
		if p.Finished() {
			p.Destroy(s.ram)
			return
		}
		if _, resident := p.Resident(p.PCPage); !resident {
			if err := s.mm.Fault(s.ram, rq, p, p.PCPage); err != nil {
				s.logger.Printf("pid %d: page fault servicing failed: %v; terminating", p.PID, err)
				p.Destroy(s.ram)
				return
			}
		}
	default:
		p.PCOffset = s.cpu.Offset
	}

	if quit {
		p.Destroy(s.ram)
		return
	}

	rq.Enqueue(p)
}
