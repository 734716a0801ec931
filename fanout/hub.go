// Package fanout delivers domain events to the sessions subscribed to their
// topics. Delivery is best-effort, at-most-once, with no durability or
// replay; the hub is not a message broker.
package fanout

import (
	"log/slog"
	"sync"

	"chat-rooms/domain/event"
)

// Subscriber is one session's receiving end. C is buffered; a subscriber
// that stops draining loses events instead of blocking publishers.
type Subscriber struct {
	C chan event.DomainEvent
}

// Hub routes published events to every subscriber of the event's topic.
// Safe for concurrent use by multiple goroutines.
type Hub struct {
	log    *slog.Logger
	buffer int

	mu     sync.RWMutex
	topics map[string]map[*Subscriber]struct{}
}

func NewHub(log *slog.Logger, buffer int) *Hub {
	return &Hub{
		log:    log,
		buffer: buffer,
		topics: make(map[string]map[*Subscriber]struct{}),
	}
}

// NewSubscriber allocates a subscriber that can then be attached to any
// number of topics.
func (h *Hub) NewSubscriber() *Subscriber {
	return &Subscriber{C: make(chan event.DomainEvent, h.buffer)}
}

func (h *Hub) Subscribe(topic string, s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Subscriber]struct{})
	}
	h.topics[topic][s] = struct{}{}
}

func (h *Hub) Unsubscribe(topic string, s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detach(topic, s)
}

// Drop detaches the subscriber from every topic. Called when a session ends.
func (h *Hub) Drop(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic := range h.topics {
		h.detach(topic, s)
	}
}

func (h *Hub) detach(topic string, s *Subscriber) {
	if set, ok := h.topics[topic]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Publish pushes the event to every current subscriber of its topic. The
// send never blocks: a full subscriber buffer drops the event.
func (h *Hub) Publish(evt event.DomainEvent) {
	topic := evt.Topic()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.topics[topic] {
		select {
		case s.C <- evt:
		default:
			h.log.Debug("Subscriber buffer full, event dropped", "topic", topic)
		}
	}
}

// Subscribers reports how many sessions currently listen on a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
