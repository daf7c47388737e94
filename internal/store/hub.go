package store

import (
	"context"
	"sync"
)

type subscriber struct {
	ch chan Document
}

// deliver replaces any undelivered snapshot with doc.
func (s *subscriber) deliver(doc Document) {
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- doc:
	default:
	}
}

type hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[*subscriber]struct{})}
}

func (h *hub) subscribe(ctx context.Context, key string, initial Document) <-chan Document {
	sub := &subscriber{ch: make(chan Document, 1)}
	sub.ch <- initial

	h.mu.Lock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[*subscriber]struct{})
	}
	h.subs[key][sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.remove(key, sub)
	}()
	return sub.ch
}

func (h *hub) remove(key string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[key][sub]; !ok {
		return
	}
	delete(h.subs[key], sub)
	if len(h.subs[key]) == 0 {
		delete(h.subs, key)
	}
	close(sub.ch)
}

func (h *hub) publish(key string, doc Document) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[key] {
		sub.deliver(doc.Clone())
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, subs := range h.subs {
		for sub := range subs {
			close(sub.ch)
		}
		delete(h.subs, key)
	}
}
