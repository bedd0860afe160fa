package realtime

import (
	"context"
	"sync"
)

// Subscription is the handle returned by Hub.Subscribe.
type Subscription struct {
	Canal    string
	filtros  []Filtro
	onChange func(Event)
}

func (s *Subscription) wants(e Event) bool {
	if len(s.filtros) == 0 {
		return true
	}
	for _, f := range s.filtros {
		if f.Match(e) {
			return true
		}
	}
	return false
}

// Hub delivers events to in-process subscribers. It is safe for concurrent
// use; callbacks run on the publisher's goroutine, outside the hub lock, and
// must not block.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers onChange for events matching any of filtros.
// No filters means every event.
func (h *Hub) Subscribe(canal string, filtros []Filtro, onChange func(Event)) *Subscription {
	s := &Subscription{Canal: canal, filtros: filtros, onChange: onChange}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Unsubscribe removes s. Unknown or repeated handles are ignored.
func (h *Hub) Unsubscribe(s *Subscription) {
	if s == nil {
		return
	}
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

// Publish delivers events to every matching subscriber.
func (h *Hub) Publish(_ context.Context, events ...Event) {
	h.mu.RLock()
	targets := make([]*Subscription, 0, len(h.subs))
	for s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, e := range events {
		for _, s := range targets {
			if s.wants(e) {
				s.onChange(e)
			}
		}
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
