// Package diagnostics periodically logs kernel health: RAM occupancy, ready
// queue depth, and backing store disk usage. It is pure observability — no
// kernel operation depends on it running.
package diagnostics

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"

	"github.com/kernelsim/mykernel/internal/backingstore"
	"github.com/kernelsim/mykernel/internal/proc"
	"github.com/kernelsim/mykernel/internal/ramdisk"
)

// Reporter schedules a periodic health report via a cron "@every" entry,
// the same scheduling idiom the reference storage engine used for its
// background compaction job.
type Reporter struct {
	ram      *ramdisk.RAM
	rq       *proc.ReadyQueue
	store    *backingstore.Store
	interval time.Duration
	logger   *log.Logger

	cron    *cron.Cron
	entryID cron.EntryID
}

// New returns a Reporter that, once started, logs a report every interval.
func New(ram *ramdisk.RAM, rq *proc.ReadyQueue, store *backingstore.Store, interval time.Duration, logger *log.Logger) *Reporter {
	return &Reporter{ram: ram, rq: rq, store: store, interval: interval, logger: logger}
}

// Start registers the periodic report and begins the cron scheduler. A zero
// or negative interval disables reporting: nothing is scheduled.
func (r *Reporter) Start() error {
	if r.interval <= 0 {
		return nil
	}
	r.cron = cron.New()
	spec := fmt.Sprintf("@every %s", r.interval)
	id, err := r.cron.AddFunc(spec, r.report)
	if err != nil {
		return fmt.Errorf("schedule diagnostics report %q: %w", spec, err)
	}
	r.entryID = id
	r.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for any in-flight report to finish.
func (r *Reporter) Stop() {
	if r.cron == nil {
		return
	}
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// report logs one line summarizing RAM occupancy, the ready queue's depth,
// and how much disk the backing store is currently using.
func (r *Reporter) report() {
	occupied := r.ram.OccupiedFrames()
	total := r.ram.NumFrames()
	queued := r.rq.Len()
	diskBytes := r.backingStoreBytes()

	r.logger.Printf(
		"diagnostics: ram %d/%d frames occupied, %d PCBs ready, backing store using %s",
		occupied, total, queued, humanize.Bytes(diskBytes),
	)
}

func (r *Reporter) backingStoreBytes() uint64 {
	var total uint64
	_ = filepath.Walk(r.store.Dir(), func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		total += uint64(info.Size())
		return nil
	})
	return total
}
