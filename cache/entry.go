package cache

import (
	"encoding/json"
	"time"
)

// State is the lifecycle state of a cache entry:
// Uninitialized -> Loading -> Success|Error -> (invalidated) -> Loading -> ...
type State int

const (
	Uninitialized State = iota
	Loading
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "uninitialized"
	}
}

// Result is a point-in-time snapshot of a cache entry.
type Result struct {
	State State
	Data  json.RawMessage
	Err   error
}

func (r Result) IsLoading() bool { return r.State == Loading || r.State == Uninitialized }
func (r Result) IsError() bool   { return r.State == Error }

type entry struct {
	key      string
	provides []Tag
	fetch    FetchFunc

	state State
	data  json.RawMessage
	err   error

	// gen is bumped whenever the cached value is no longer wanted
	// (invalidation, reset); an in-flight fetch started under an older
	// gen discards its result.
	gen      int
	inFlight bool
	dirty    bool // invalidated mid-flight; one follow-up fetch is owed

	subs      map[int]*Subscription
	nextSubID int
	evict     *time.Timer
}

func (e *entry) result() Result {
	return Result{State: e.state, Data: e.data, Err: e.err}
}

func (e *entry) notify() {
	for _, sub := range e.subs {
		select {
		case sub.updates <- struct{}{}:
		default: // subscriber already has a pending update
		}
	}
}
