package pool

import "time"

// Status is the lifecycle state of a WorkItem.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusBlocked   Status = "blocked"
)

// Terminal returns true if the status is a final state.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusBlocked
}

// Transition is one observed WorkItem status change. Transitions are
// advisory: consumers may log or display them, but they never influence
// scheduling decisions.
type Transition struct {
	Spec string
	From Status
	To   Status
	At   time.Time
}

// Notifier receives WorkItem transitions as they happen.
type Notifier interface {
	Notify(Transition)
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(Transition)

// Notify implements Notifier.
func (f NotifierFunc) Notify(tr Transition) { f(tr) }
