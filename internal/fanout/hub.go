package fanout

import (
	"errors"
	"sync"

	"messaging-service/internal/observability"
)

// subscriberBuffer bounds how far a subscriber may fall behind before it is
// dropped instead of stalling the publisher.
const subscriberBuffer = 32

var ErrHubClosed = errors.New("fanout hub closed")

// Subscription is one client's live view of a channel. Events arrive on C
// in publish order until Unsubscribe or the hub drops the subscriber.
type Subscription struct {
	C       <-chan Event
	ch      chan Event
	channel string
}

// Channel returns the channel this subscription is bound to.
func (s *Subscription) Channel() string {
	return s.channel
}

// Hub is the in-process fan-out. One logical channel per room slug;
// per-channel publish order is preserved because each Publish call fans out
// to subscriber buffers before returning.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*Subscription]bool
	closed   bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{channels: make(map[string]map[*Subscription]bool)}
}

// Subscribe registers a new subscription on the channel. Every Subscribe
// must be paired with an Unsubscribe to avoid leaking subscriptions in long
// sessions.
func (h *Hub) Subscribe(channel string) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}

	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch, channel: channel}
	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*Subscription]bool)
	}
	h.channels[channel][sub] = true

	observability.IncFanoutActive()
	return sub, nil
}

// Unsubscribe removes the subscription and closes its event channel.
// Unsubscribing twice is a no-op.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

func (h *Hub) removeLocked(sub *Subscription) {
	subs, ok := h.channels[sub.channel]
	if !ok || !subs[sub] {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.channels, sub.channel)
	}
	close(sub.ch)
	observability.DecFanoutActive()
}

// ActiveSubscriptions reports the number of live subscriptions across all
// channels.
func (h *Hub) ActiveSubscriptions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, subs := range h.channels {
		n += len(subs)
	}
	return n
}

// Publish delivers the event to every subscriber currently registered on
// the channel. A subscriber whose buffer is full is dropped rather than
// blocking delivery to the rest of the channel.
func (h *Hub) Publish(channel, event string, payload interface{}) error {
	ev := Event{Channel: channel, Event: event, Data: payload}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}

	for sub := range h.channels[channel] {
		select {
		case sub.ch <- ev:
		default:
			h.removeLocked(sub)
			observability.IncFanoutEvent("subscriber_dropped")
		}
	}
	observability.IncFanoutEvent("published")
	return nil
}

// Close drops every subscription and rejects further use.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for _, subs := range h.channels {
		for sub := range subs {
			close(sub.ch)
			observability.DecFanoutActive()
		}
	}
	h.channels = make(map[string]map[*Subscription]bool)
	return nil
}

var _ Broadcaster = (*Hub)(nil)
