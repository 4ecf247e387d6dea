// Package cache implements the process-wide response cache and its
// tag-based invalidation engine. Entries are keyed by endpoint+args,
// shared by all subscribers of that key, and re-fetched when a
// mutation invalidates one of the tags they provide.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// FetchFunc produces the value for a cache entry. It must issue
// exactly one network call per invocation.
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	grace   time.Duration
}

// NewStore creates an empty store. Entries whose last subscriber left
// survive for the grace period before being evicted.
func NewStore(grace time.Duration) *Store {
	return &Store{
		entries: make(map[string]*entry),
		grace:   grace,
	}
}

// Subscribe registers interest in the given key. The first subscriber
// triggers the fetch; concurrent subscribers to the same key share the
// single in-flight call. A cached result (success or error) is served
// as-is; a failed entry is only retried on invalidation or Refetch.
func (s *Store) Subscribe(key string, provides []Tag, fetch FetchFunc) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry{
			key:      key,
			provides: provides,
			fetch:    fetch,
			subs:     make(map[int]*Subscription),
		}
		s.entries[key] = e
	}
	if e.evict != nil {
		e.evict.Stop()
		e.evict = nil
	}

	e.nextSubID++
	sub := &Subscription{
		store:   s,
		key:     key,
		id:      e.nextSubID,
		updates: make(chan struct{}, 1),
	}
	e.subs[sub.id] = sub

	if e.state == Uninitialized {
		s.startFetch(e)
	}
	return sub
}

// Get returns a snapshot of the entry at key without subscribing.
func (s *Store) Get(key string) (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		return e.result(), true
	}
	return Result{}, false
}

// Refetch forces a new fetch for the entry at key, de-duplicated with
// any fetch already in flight.
func (s *Store) Refetch(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		s.markStale(e)
	}
}

// Invalidate marks stale every entry whose provided-tag set intersects
// tags, re-fetching each affected entry exactly once. Entries idling in
// their eviction grace period are reset instead of re-fetched; a new
// subscriber starts them over.
func (s *Store) Invalidate(tags ...Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if !intersects(e.provides, tags) {
			continue
		}
		if len(e.subs) == 0 && !e.inFlight {
			e.gen++
			e.state = Uninitialized
			e.data = nil
			e.err = nil
			continue
		}
		s.markStale(e)
	}
}

// Reset drops every entry and closes all subscriptions. In-flight
// results are discarded when they land.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		e.gen++ // orphan in-flight fetches
		if e.evict != nil {
			e.evict.Stop()
		}
		for _, sub := range e.subs {
			sub.close()
		}
	}
	s.entries = make(map[string]*entry)
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// markStale transitions the entry back to loading and owes it exactly
// one fresh fetch. Callers must hold s.mu.
func (s *Store) markStale(e *entry) {
	e.gen++
	if e.inFlight {
		e.dirty = true
		return
	}
	s.startFetch(e)
}

// startFetch launches the entry's fetch in the background. Callers
// must hold s.mu.
func (s *Store) startFetch(e *entry) {
	if e.inFlight {
		return
	}
	e.inFlight = true
	e.state = Loading
	e.notify()

	gen := e.gen
	go s.runFetch(e, gen)
}

func (s *Store) runFetch(e *entry, gen int) {
	// the fetch deliberately outlives its subscribers; a stale result
	// is discarded below via the gen check
	data, err := e.fetch(context.Background())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[e.key] != e {
		return // evicted or reset mid-flight
	}
	e.inFlight = false

	if e.dirty {
		// invalidated mid-flight: this result is already stale
		e.dirty = false
		if len(e.subs) == 0 {
			// nobody is listening anymore; leave the entry cold the
			// same way Invalidate treats idle grace-period entries
			e.state = Uninitialized
			e.data = nil
			e.err = nil
			return
		}
		s.startFetch(e)
		return
	}
	if gen != e.gen {
		return
	}

	if err != nil {
		e.state = Error
		e.data = nil
		e.err = err
	} else {
		e.state = Success
		e.data = data
		e.err = nil
	}
	e.notify()
}

// unsubscribe removes sub from its entry; the last subscriber arms the
// eviction timer.
func (s *Store) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sub.key]
	if !ok {
		return
	}
	if _, ok := e.subs[sub.id]; !ok {
		return
	}
	sub.close()

	if len(e.subs) > 0 {
		return
	}
	if s.grace <= 0 {
		delete(s.entries, e.key)
		return
	}
	e.evict = time.AfterFunc(s.grace, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if cur, ok := s.entries[e.key]; ok && cur == e && len(e.subs) == 0 {
			delete(s.entries, e.key)
		}
	})
}

// Subscription is one component's handle on a cache entry.
type Subscription struct {
	store   *Store
	key     string
	id      int
	updates chan struct{}
	closed  bool // guarded by store.mu
}

// Updates signals (coalesced) whenever the entry's state changes.
func (sub *Subscription) Updates() <-chan struct{} {
	return sub.updates
}

// Result returns the current snapshot of the subscribed entry.
func (sub *Subscription) Result() Result {
	res, _ := sub.store.Get(sub.key)
	return res
}

// Refetch forces a fresh fetch of the subscribed entry.
func (sub *Subscription) Refetch() {
	sub.store.Refetch(sub.key)
}

// Close unsubscribes. Safe to call more than once and after Reset.
func (sub *Subscription) Close() {
	sub.store.unsubscribe(sub)
}

// close must be called with store.mu held.
func (sub *Subscription) close() {
	if sub.closed {
		return
	}
	sub.closed = true
	if e, ok := sub.store.entries[sub.key]; ok {
		delete(e.subs, sub.id)
	}
	close(sub.updates)
}
