package fallback

import (
	"sync"
	"time"
)

// historyCap bounds the fallback-event buffer; the oldest entry is evicted
// when a new event would exceed it.
const historyCap = 100

// Event is an immutable record of one provider switch. Observability only:
// nothing reads it back into selection decisions.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	FromProvider string    `json:"from_provider"`
	ToProvider   string    `json:"to_provider,omitempty"`
	Reason       string    `json:"reason"`
	Success      bool      `json:"success"`
}

// History is a bounded ring of fallback events with subscriber fan-out for
// the live event feed.
type History struct {
	mu     sync.Mutex
	events []Event
	subs   map[chan Event]struct{}
}

func NewHistory() *History {
	return &History{
		subs: make(map[chan Event]struct{}),
	}
}

// Push appends an event, evicting the oldest once the cap is reached, and
// notifies subscribers. Slow subscribers miss events rather than block.
func (h *History) Push(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, e)
	if len(h.events) > historyCap {
		h.events = h.events[len(h.events)-historyCap:]
	}

	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Events returns a copy of the buffer, oldest first.
func (h *History) Events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Event, len(h.events))
	copy(out, h.events)
	return out
}

// Len returns the current number of buffered events.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

// Subscribe registers a channel that receives future events. The caller
// must Unsubscribe when done.
func (h *History) Subscribe() chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (h *History) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}
