/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Seednode/twentyq/metrics"
)

type entry struct {
	mu      sync.Mutex
	session *Session

	// guarded by Store.mu
	pending    int
	lastActive time.Time
}

// Store keeps one Session and UsageMonitor per session id. Sessions are
// created on first access and torn down once they have been idle longer
// than the idle timeout, or when the store is closed.
type Store struct {
	mu          sync.Mutex
	entries     map[string]*entry
	idleTimeout time.Duration
	opts        Options
	log         zerolog.Logger
	teardown    []func(*Session)
	closed      bool

	stop      chan struct{}
	closeOnce sync.Once
}

func NewStore(opts Options, idleTimeout time.Duration) *Store {
	st := &Store{
		entries:     make(map[string]*entry),
		idleTimeout: idleTimeout,
		opts:        opts,
		log:         opts.Logger,
		stop:        make(chan struct{}),
	}
	if idleTimeout > 0 {
		go st.reaperLoop()
	}
	return st
}

// OnTeardown registers fn to run after a session's monitor has been finalized.
func (st *Store) OnTeardown(fn func(*Session)) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.teardown = append(st.teardown, fn)
}

// Do runs fn against the session for id, creating it if needed. Calls for
// the same id are serialized. Once the store is closed Do returns ErrIgnored.
func (st *Store) Do(id string, fn func(*Session) error) error {
	if id == "" {
		id = UnknownSession
	}

	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		return ErrIgnored
	}
	e, ok := st.entries[id]
	if !ok {
		e = &entry{
			session: NewSession(id, NewUsageMonitor(id, st.log), st.opts),
		}
		st.entries[id] = e
		metrics.SessionOpened()
	}
	e.pending++
	e.lastActive = time.Now()
	st.mu.Unlock()

	defer func() {
		st.mu.Lock()
		e.pending--
		e.lastActive = time.Now()
		st.mu.Unlock()
	}()

	e.mu.Lock()
	defer e.mu.Unlock()

	return fn(e.session)
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return len(st.entries)
}

// Reap tears down every idle session whose last activity is before cutoff
// and reports how many were removed. Sessions with an event in flight are kept.
func (st *Store) Reap(cutoff time.Time) int {
	st.mu.Lock()
	var expired []*entry
	for id, e := range st.entries {
		if e.pending > 0 || !e.lastActive.Before(cutoff) {
			continue
		}
		delete(st.entries, id)
		expired = append(expired, e)
	}
	hooks := append([]func(*Session){}, st.teardown...)
	st.mu.Unlock()

	for _, e := range expired {
		st.finalize(e, hooks)
	}

	return len(expired)
}

// Close stops the reaper and tears down every remaining session.
func (st *Store) Close() {
	st.closeOnce.Do(func() {
		close(st.stop)
	})

	st.mu.Lock()
	st.closed = true
	all := make([]*entry, 0, len(st.entries))
	for id, e := range st.entries {
		delete(st.entries, id)
		all = append(all, e)
	}
	hooks := append([]func(*Session){}, st.teardown...)
	st.mu.Unlock()

	for _, e := range all {
		st.finalize(e, hooks)
	}
}

func (st *Store) finalize(e *entry, hooks []func(*Session)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if m := e.session.Monitor(); m != nil {
		m.Finalize()
	}
	metrics.SessionClosed()

	for _, fn := range hooks {
		fn(e.session)
	}
}

// minReapInterval is the shortest reaper tick.
const minReapInterval = time.Millisecond

func (st *Store) reaperLoop() {
	ticker := time.NewTicker(max(st.idleTimeout/2, minReapInterval))
	defer ticker.Stop()

	for {
		select {
		case <-st.stop:
			return
		case now := <-ticker.C:
			if n := st.Reap(now.Add(-st.idleTimeout)); n > 0 {
				st.log.Debug().Int("count", n).Msg("reaped idle sessions")
			}
		}
	}
}
