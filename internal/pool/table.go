package pool

import (
	"sync"
	"time"

	"github.com/vk/specflow/internal/spec"
)

// workItem is the transient per-execution state of one spec. Items live in
// the batch's status table and are discarded with it when the batch ends.
type workItem struct {
	spec      *spec.Spec
	status    Status
	attempts  int
	costUSD   float64
	duration  time.Duration
	err       error
	blockedOn string
}

// table is the WorkItem status table for a single batch. It is the only
// mutable state shared between workers, so every access goes through the
// mutex; level-completion checks stay correct when workers finish
// simultaneously.
type table struct {
	mu       sync.Mutex
	items    map[string]*workItem
	notifier Notifier
}

func newTable(specs []*spec.Spec, notifier Notifier) *table {
	t := &table{
		items:    make(map[string]*workItem, len(specs)),
		notifier: notifier,
	}
	for _, s := range specs {
		t.items[s.Name] = &workItem{spec: s, status: StatusPending}
	}
	return t
}

// transition moves an item to a new status and emits the notification. The
// notifier runs outside the lock so a slow consumer cannot stall workers.
func (t *table) transition(name string, to Status) {
	t.mu.Lock()
	item := t.items[name]
	from := item.status
	item.status = to
	t.mu.Unlock()

	if t.notifier != nil {
		t.notifier.Notify(Transition{Spec: name, From: from, To: to, At: time.Now()})
	}
}

func (t *table) status(name string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.items[name].status
}

// block marks an item blocked on the given upstream spec.
func (t *table) block(name, upstream string) {
	t.mu.Lock()
	t.items[name].blockedOn = upstream
	t.mu.Unlock()
	t.transition(name, StatusBlocked)
}

// finish records the terminal execution outcome for an item.
func (t *table) finish(name string, attempts int, costUSD float64, duration time.Duration, err error) {
	t.mu.Lock()
	item := t.items[name]
	item.attempts = attempts
	item.costUSD = costUSD
	item.duration = duration
	item.err = err
	t.mu.Unlock()

	if err != nil {
		t.transition(name, StatusFailed)
	} else {
		t.transition(name, StatusSucceeded)
	}
}
