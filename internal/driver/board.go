package driver

import (
	"slices"
	"sync"

	"github.com/JonMunkholm/leaddesk/internal/core"
)

// State is the import state of one table.
type State string

const (
	StatePending   State = "pending"
	StateUploading State = "uploading"
	StateSuccess   State = "success"
	StateError     State = "error"
)

// Status is a snapshot of one table's import.
type Status struct {
	Table   core.Table `json:"table"`
	State   State      `json:"state"`
	Current int        `json:"currentChunk,omitempty"`
	Total   int        `json:"totalChunks,omitempty"`
	Percent int        `json:"progressPercent"`
	Success int        `json:"success"`
	Failed  int        `json:"failed"`
	Errors  []string   `json:"errors,omitempty"`
}

// Board holds the import status of every table touched by one import view.
// Each table moves pending -> uploading -> success|error; a new run on the
// same table starts over from uploading.
//
// Observers registered with Watch are called synchronously after every
// transition, in registration order.
type Board struct {
	mu       sync.RWMutex
	statuses map[core.Table]Status
	watchers []func(Status)
}

// NewBoard returns a Board with every table pending.
func NewBoard() *Board {
	b := &Board{statuses: make(map[core.Table]Status)}
	for _, t := range core.Tables() {
		b.statuses[t] = Status{Table: t, State: StatePending}
	}
	return b
}

// Watch registers fn to receive every status change.
func (b *Board) Watch(fn func(Status)) {
	b.mu.Lock()
	b.watchers = append(b.watchers, fn)
	b.mu.Unlock()
}

// Get returns the current status of t.
func (b *Board) Get(t core.Table) Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if s, ok := b.statuses[t]; ok {
		return cloneStatus(s)
	}
	return Status{Table: t, State: StatePending}
}

// Progress moves t to uploading at chunk current of total with the running
// counts so far. The percent reflects chunks started and stays below 100.
func (b *Board) Progress(t core.Table, current, total, success, failed int) {
	b.set(Status{
		Table:   t,
		State:   StateUploading,
		Current: current,
		Total:   total,
		Percent: percent(current-1, total),
		Success: success,
		Failed:  failed,
	})
}

// Finish moves t to its final state. The run counts as a success only when
// no row failed and no chunk call errored.
func (b *Board) Finish(t core.Table, total, success, failed int, chunkErrors int, errs []string) Status {
	state := StateSuccess
	if failed > 0 || chunkErrors > 0 {
		state = StateError
	}
	s := Status{
		Table:   t,
		State:   state,
		Current: total,
		Total:   total,
		Percent: 100,
		Success: success,
		Failed:  failed,
		Errors:  append([]string(nil), errs...),
	}
	b.set(s)
	return cloneStatus(s)
}

// Fail moves t straight to error, for runs that could not start or were
// cancelled part way.
func (b *Board) Fail(t core.Table, success, failed int, errs []string) Status {
	prev := b.Get(t)
	s := Status{
		Table:   t,
		State:   StateError,
		Current: prev.Current,
		Total:   prev.Total,
		Percent: prev.Percent,
		Success: success,
		Failed:  failed,
		Errors:  append([]string(nil), errs...),
	}
	b.set(s)
	return cloneStatus(s)
}

func (b *Board) set(s Status) {
	b.mu.Lock()
	b.statuses[s.Table] = s
	watchers := slices.Clone(b.watchers)
	b.mu.Unlock()

	for _, fn := range watchers {
		fn(cloneStatus(s))
	}
}

func cloneStatus(s Status) Status {
	s.Errors = append([]string(nil), s.Errors...)
	return s
}

// percent is round(done/total*100), capped at 99 so that 100 is only ever
// reported by a finished run.
func percent(done, total int) int {
	if total <= 0 || done <= 0 {
		return 0
	}
	p := (done*200 + total) / (total * 2)
	return min(p, 99)
}
