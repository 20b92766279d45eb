package pipeline

import "sync"

// Event is one job state transition published by the pipeline.
type Event struct {
	JobID    int64     `json:"jobId"`
	FileName string    `json:"fileName"`
	Status   JobStatus `json:"status"`
	Detected int       `json:"detected,omitempty"`
	Added    int       `json:"added,omitempty"`
	Skipped  int       `json:"skipped,omitempty"`
	Error    string    `json:"error,omitempty"`
}

const subscriberBuffer = 16

// Hub fans job events out to subscribers. Publishing never blocks: a
// subscriber that falls behind loses events rather than stalling the
// pipeline.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be called
// when done; it closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber with room for it.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
