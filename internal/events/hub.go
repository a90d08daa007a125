package events

import (
	"slices"
	"sync"
	"sync/atomic"

	"grimm.is/rtlink/internal/clock"
)

// DefaultBuffer is the channel size used when Subscribe is given zero.
const DefaultBuffer = 256

// Hub fans events out to subscribers without blocking the publisher.
type Hub struct {
	mu    sync.RWMutex
	subs  []*subscriber
	clock clock.Clock

	published atomic.Uint64
	dropped   atomic.Uint64
}

type subscriber struct {
	ch    chan Event
	types []EventType
	// index restricts delivery to one link; zero means any.
	index int32
}

func (s *subscriber) wants(e Event) bool {
	if len(s.types) > 0 && !slices.Contains(s.types, e.Type) {
		return false
	}
	if s.index == 0 {
		return true
	}
	d, ok := e.Data.(LinkData)
	return ok && d.Index == s.index
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clock: clock.RealClock{}}
}

// Publish delivers e to every interested subscriber. A subscriber whose
// buffer is full misses the event and the drop is counted.
func (h *Hub) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = h.clock.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	h.published.Add(1)
	for _, s := range h.subs {
		if !s.wants(e) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			h.dropped.Add(1)
		}
	}
}

// Subscribe returns a channel receiving events of the given types, or of
// every type when none are listed. The caller must drain it.
func (h *Hub) Subscribe(bufSize int, types ...EventType) <-chan Event {
	return h.add(&subscriber{types: types}, bufSize)
}

// SubscribeLink is Subscribe restricted to events about one interface
// index.
func (h *Hub) SubscribeLink(bufSize int, index int32, types ...EventType) <-chan Event {
	return h.add(&subscriber{types: types, index: index}, bufSize)
}

func (h *Hub) add(s *subscriber, bufSize int) <-chan Event {
	if bufSize <= 0 {
		bufSize = DefaultBuffer
	}
	s.ch = make(chan Event, bufSize)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = append(h.subs, s)
	return s.ch
}

// Unsubscribe stops delivery to ch. The channel is not closed.
func (h *Hub) Unsubscribe(ch <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = slices.DeleteFunc(h.subs, func(s *subscriber) bool {
		return (<-chan Event)(s.ch) == ch
	})
}

// Stats returns publish/drop counts.
func (h *Hub) Stats() (published, dropped uint64) {
	return h.published.Load(), h.dropped.Load()
}

// EmitLink publishes a link event.
func (h *Hub) EmitLink(t EventType, data LinkData) {
	h.Publish(Event{Type: t, Source: "rtnetlink", Data: data})
}
