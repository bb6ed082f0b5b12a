// Package watch fans resolution progress out to HTTP watchers (SSE and
// websocket). Each resolution gets a stream keyed by its id; subscribers
// receive the buffered history first, then live events. Slow subscribers
// lose their oldest buffered event rather than blocking the resolver.
package watch

import (
	"sync"
	"time"

	"etymograph/internal/morph"
	"etymograph/internal/validate"
)

type EventKind string

const (
	EventAttempt   EventKind = "attempt"
	EventAccepted  EventKind = "accepted"
	EventExhausted EventKind = "exhausted"
	EventFailed    EventKind = "failed"
)

// Event is one progress update for a watched resolution.
type Event struct {
	Kind       EventKind            `json:"kind"`
	Word       string               `json:"word"`
	Attempt    int                  `json:"attempt,omitempty"`
	Violations []validate.Violation `json:"violations,omitempty"`
	Document   *morph.Document      `json:"document,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// Terminal reports whether no further events can follow this one.
func (e Event) Terminal() bool {
	return e.Kind == EventAccepted || e.Kind == EventExhausted || e.Kind == EventFailed
}

const (
	defaultRetention = 5 * time.Minute
	subscriberBuffer = 8
)

// Hub tracks event streams for in-flight and recently finished
// resolutions. Finished streams stay subscribable for the retention
// window so late watchers still see the outcome.
type Hub struct {
	mu        sync.Mutex
	retention time.Duration
	streams   map[string]*stream
}

type stream struct {
	history []Event
	subs    map[chan Event]struct{}
	done    bool
}

func NewHub(retention time.Duration) *Hub {
	if retention <= 0 {
		retention = defaultRetention
	}
	return &Hub{
		retention: retention,
		streams:   make(map[string]*stream),
	}
}

// Open registers a new stream under id. Publishing to an unopened id is
// a no-op, so callers must Open before the resolution starts.
func (h *Hub) Open(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.streams[id]; ok {
		return
	}
	h.streams[id] = &stream{subs: make(map[chan Event]struct{})}
}

// Publish appends ev to the stream's history and fans it out. A terminal
// event closes all subscriber channels and schedules the stream for
// removal after the retention window.
func (h *Hub) Publish(id string, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	st, ok := h.streams[id]
	if !ok || st.done {
		return
	}
	st.history = append(st.history, ev)
	for ch := range st.subs {
		push(ch, ev)
	}
	if ev.Terminal() {
		st.done = true
		for ch := range st.subs {
			close(ch)
		}
		st.subs = make(map[chan Event]struct{})
		time.AfterFunc(h.retention, func() { h.forget(id) })
	}
}

// Subscribe attaches to a stream. The returned channel replays the
// history so far, then carries live events; it is closed after the
// terminal event. cancel detaches early and is safe to call twice.
// ok is false when the id is unknown or already forgotten.
func (h *Hub) Subscribe(id string) (events <-chan Event, cancel func(), ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	st, found := h.streams[id]
	if !found {
		return nil, nil, false
	}

	ch := make(chan Event, len(st.history)+subscriberBuffer)
	for _, ev := range st.history {
		ch <- ev
	}
	if st.done {
		close(ch)
		return ch, func() {}, true
	}

	st.subs[ch] = struct{}{}
	cancel = func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, live := st.subs[ch]; live {
			delete(st.subs, ch)
			close(ch)
		}
	}
	return ch, cancel, true
}

func (h *Hub) forget(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.streams, id)
}

// push delivers without blocking: when the buffer is full the oldest
// event is dropped so the newest (possibly terminal) one still lands.
func push(ch chan Event, ev Event) {
	select {
	case ch <- ev:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- ev:
	default:
	}
}
