package daemon

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// broker keeps a bounded log of recent events and fans each new event out
// to live stream subscribers. Slow subscribers miss events rather than
// block a projection.
type broker struct {
	mu     sync.Mutex
	limit  int
	nextID int64
	log    []Event
	subs   map[chan Event]struct{}
}

func newBroker(limit int) *broker {
	return &broker{limit: limit, subs: make(map[chan Event]struct{})}
}

// publish numbers ev, appends it to the log and offers it to subscribers.
func (b *broker) publish(ev Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	ev.ID = b.nextID
	b.log = append(b.log, ev)
	if over := len(b.log) - b.limit; over > 0 {
		b.log = b.log[over:]
	}
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return ev
}

// recent returns a copy of the retained events, oldest first.
func (b *broker) recent() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.log))
	copy(out, b.log)
	return out
}

func (b *broker) counts() (events, subscribers int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.log), len(b.subs)
}

// subscribe registers a buffered channel and returns it with its cancel func.
func (b *broker) subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch, func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}
}

// handleStream serves events as server-sent events, starting with the
// current snapshot.
func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")

	events, cancel := s.events.subscribe()
	defer cancel()

	send := func(ev Event) {
		if err := writeSSE(w, ev); err != nil {
			return
		}
		flusher.Flush()
	}
	send(Event{Type: EventSnapshot, Timestamp: time.Now(), Snapshot: s.snapshotStatus().Summary})

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			send(ev)
		}
	}
}

// writeSSE writes one event frame. The id line is left out for the
// unnumbered greeting snapshot.
func writeSSE(w io.Writer, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if ev.ID > 0 {
		if _, err := fmt.Fprintf(w, "id: %d\n", ev.ID); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}
