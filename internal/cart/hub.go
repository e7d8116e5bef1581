package cart

import (
	"sync"
	"time"

	"ektagames/internal/metrics"
)

// Hub owns one Store per signed-in browser session.
type Hub struct {
	remote  Remote
	metrics *metrics.Metrics
	now     func() time.Time

	mu     sync.Mutex
	stores map[string]*hubEntry
}

type hubEntry struct {
	store *Store
	seen  time.Time
}

func NewHub(remote Remote, m *metrics.Metrics) *Hub {
	return &Hub{remote: remote, metrics: m, now: time.Now, stores: map[string]*hubEntry{}}
}

// Store returns the session's store, creating an unauthenticated one on
// first use. Callers should only ask for sessions they mean to sign in.
func (h *Hub) Store(sid string) *Store {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.stores[sid]
	if !ok {
		e = &hubEntry{store: NewStore(h.remote, h.metrics)}
		h.stores[sid] = e
	}
	e.seen = h.now()
	return e.store
}

// Peek returns the session's store without creating one.
func (h *Hub) Peek(sid string) (*Store, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.stores[sid]
	if !ok {
		return nil, false
	}
	e.seen = h.now()
	return e.store, true
}

// Anonymous returns a signed-out store that the hub does not keep. Its
// mutations only produce the login-required notice.
func (h *Hub) Anonymous() *Store {
	return NewStore(h.remote, h.metrics)
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stores)
}

// Drop signs the session's store out, ends its event streams and forgets it.
func (h *Hub) Drop(sid string) {
	h.mu.Lock()
	e, ok := h.stores[sid]
	delete(h.stores, sid)
	h.mu.Unlock()
	if ok {
		release(e.store)
	}
}

// SweepIdle drops every store untouched since cutoff that has no event
// stream attached, and returns how many went.
func (h *Hub) SweepIdle(cutoff time.Time) int {
	h.mu.Lock()
	var idle []*Store
	for sid, e := range h.stores {
		if e.seen.Before(cutoff) && !e.store.Listening() {
			idle = append(idle, e.store)
			delete(h.stores, sid)
		}
	}
	h.mu.Unlock()
	for _, st := range idle {
		release(st)
	}
	return len(idle)
}

func (h *Hub) Close() {
	h.mu.Lock()
	stores := h.stores
	h.stores = map[string]*hubEntry{}
	h.mu.Unlock()
	for _, e := range stores {
		release(e.store)
	}
}

func release(st *Store) {
	st.SignOut()
	st.closeListeners()
}
