package notify

import (
	"sync"

	"github.com/google/uuid"
)

const subscriberBuffer = 32

type subscriber struct {
	topic string
	ch    chan Event
}

// Hub fans events out to subscribers of a topic. A subscriber that is not
// keeping up misses events rather than slowing down the publisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]*subscriber)}
}

// Subscribe registers a listener on topic and returns its id and channel.
// The channel is closed by Unsubscribe.
func (h *Hub) Subscribe(topic string) (string, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	sub := &subscriber{topic: topic, ch: make(chan Event, subscriberBuffer)}
	h.subscribers[id] = sub
	return id, sub.ch
}

// Unsubscribe removes the listener and closes its channel. Unknown ids are ignored.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subscribers[id]; ok {
		close(sub.ch)
		delete(h.subscribers, id)
	}
}

// Publish delivers ev to every subscriber of ev.Topic without blocking and
// returns how many received it.
func (h *Hub) Publish(ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, sub := range h.subscribers {
		if sub.topic != ev.Topic {
			continue
		}
		select {
		case sub.ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of listeners on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, sub := range h.subscribers {
		if sub.topic == topic {
			n++
		}
	}
	return n
}
