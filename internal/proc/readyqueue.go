package proc

import "github.com/samber/lo"

// node is a singly linked ready-queue holder, mirroring the reference
// kernel's struct ReadyQueue { pcb; next }.
type node struct {
	pcb  *PCB
	next *node
}

// ReadyQueue is a FIFO of PCB holders: enqueue at tail, dequeue at head.
// A PCB is owned by exactly one ready-queue node while alive.
type ReadyQueue struct {
	head, tail *node
}

// Enqueue appends pcb to the tail of the queue.
func (q *ReadyQueue) Enqueue(pcb *PCB) {
	n := &node{pcb: pcb}
	if q.tail == nil {
		q.head, q.tail = n, n
		return
	}
	q.tail.next = n
	q.tail = n
}

// Dequeue removes and returns the head PCB, or nil if the queue is empty.
func (q *ReadyQueue) Dequeue() *PCB {
	if q.head == nil {
		return nil
	}
	n := q.head
	q.head = n.next
	if q.head == nil {
		q.tail = nil
	}
	n.next = nil
	return n.pcb
}

// Empty reports whether the queue holds no PCBs.
func (q *ReadyQueue) Empty() bool { return q.head == nil }

// Len counts the live PCBs currently queued.
func (q *ReadyQueue) Len() int {
	n := 0
	for c := q.head; c != nil; c = c.next {
		n++
	}
	return n
}

// Snapshot returns every live PCB in FIFO order, for the memory manager's
// victim bookkeeping and for diagnostics. The returned slice is a copy of
// the pointers, not the queue structure itself.
func (q *ReadyQueue) Snapshot() []*PCB {
	out := make([]*PCB, 0, q.Len())
	for c := q.head; c != nil; c = c.next {
		out = append(out, c.pcb)
	}
	return out
}

// FindOwner returns the live PCB whose page table maps some page to frame,
// along with that page index. Used when a victim frame is reassigned and the
// previous owner's page-table entry must be invalidated.
func (q *ReadyQueue) FindOwner(frame int) (owner *PCB, pageIndex int, found bool) {
	all := q.Snapshot()
	owner, found = lo.Find(all, func(p *PCB) bool { return p.Owns(frame) })
	if !found {
		return nil, -1, false
	}
	for i, f := range owner.PageTable {
		if f == frame {
			return owner, i, true
		}
	}
	return owner, -1, false
}

// Clear destroys every queued PCB via release, emptying the queue. release
// is called once per PCB so its frames can be freed in RAM before the PCB is
// discarded.
func (q *ReadyQueue) Clear(release func(*PCB)) {
	lo.ForEach(q.Snapshot(), func(p *PCB, _ int) {
		release(p)
	})
	q.head, q.tail = nil, nil
}
