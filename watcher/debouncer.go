package watcher

import (
	"slices"
	"sync"
	"time"
)

// EventOp represents the type of file system operation.
type EventOp int

const (
	OpCreate EventOp = iota
	OpWrite
	OpRemove
	OpRename
)

func (op EventOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Batch is the set of paths that changed during one burst of activity.
// Since an index rebuild is a full walk, a batch only says that a rebuild is due
// and why.
type Batch struct {
	Paths []string // Sorted, one entry per path
	Ops   map[EventOp]int
	First time.Time
	Last  time.Time
}

// Debouncer collects file system events and emits one Batch after a quiet period.
// Repeated events for the same path within the window count once per operation.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	pending  map[string]EventOp
	ops      map[EventOp]int
	first    time.Time
	last     time.Time
	timer    *time.Timer
	output   chan Batch
}

// NewDebouncer creates a debouncer with the specified quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		pending:  make(map[string]EventOp),
		ops:      make(map[EventOp]int),
		output:   make(chan Batch, 1),
	}
}

// Output returns the channel that receives batches.
func (d *Debouncer) Output() <-chan Batch {
	return d.output
}

// Add records an event and restarts the quiet period.
func (d *Debouncer) Add(path string, op EventOp) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if len(d.pending) == 0 {
		d.first = now
	}
	d.last = now
	if prev, seen := d.pending[path]; !seen || prev != op {
		d.ops[op]++
	}
	d.pending[path] = op

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

// flush emits the pending batch. If the consumer is still busy with the previous
// batch, the pending one is merged into the next flush instead of blocking.
func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.pending) == 0 {
		return
	}

	paths := make([]string, 0, len(d.pending))
	for path := range d.pending {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	batch := Batch{Paths: paths, Ops: d.ops, First: d.first, Last: d.last}

	select {
	case d.output <- batch:
		d.pending = make(map[string]EventOp)
		d.ops = make(map[EventOp]int)
	default:
		d.timer = time.AfterFunc(d.interval, d.flush)
	}
}

// Stop cancels any pending flush.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
