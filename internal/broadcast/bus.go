// Package broadcast implements the in-process fan-out channel carrying
// every chat event to every connected session. Filtering by room or
// whisper target happens at the consuming session, not here.
package broadcast

import (
	"sync"

	"github.com/Bappoz/Rustatui-Chat/internal/domain"
)

// Bus delivers every published message to every subscription that existed
// at publish time. Publish never blocks: a subscriber that is not draining
// fast enough loses its oldest unread messages instead of stalling the
// publisher, and the loss is reported on that subscriber only.
type Bus struct {
	mu       sync.RWMutex
	subs     map[*Subscription]struct{}
	capacity int
}

// NewBus creates a bus whose subscriptions buffer up to capacity messages.
func NewBus(capacity int) *Bus {
	if capacity < 1 {
		capacity = 1
	}
	return &Bus{
		subs:     make(map[*Subscription]struct{}),
		capacity: capacity,
	}
}

// Subscribe registers a new subscriber. It observes only messages
// published after this call; there is no replay.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{
		bus: b,
		ch:  make(chan domain.ChatMessage, b.capacity),
	}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Publish fans msg out to all current subscriptions. It never blocks and
// is a no-op when no subscribers remain.
func (b *Bus) Publish(msg domain.ChatMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		sub.deliver(msg)
	}
}

// Capacity reports the per-subscription buffer size.
func (b *Bus) Capacity() int {
	return b.capacity
}

// Subscribers reports the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
}

// Subscription is one subscriber's private receiving end of the bus.
type Subscription struct {
	bus *Bus
	ch  chan domain.ChatMessage

	mu     sync.Mutex
	lost   int
	closed bool
}

// C returns the receive channel. It is closed by Close.
func (s *Subscription) C() <-chan domain.ChatMessage {
	return s.ch
}

// Lost returns the number of messages dropped since the last call and
// resets the counter.
func (s *Subscription) Lost() int {
	s.mu.Lock()
	n := s.lost
	s.lost = 0
	s.mu.Unlock()
	return n
}

// Close detaches the subscription from the bus and closes its channel.
func (s *Subscription) Close() {
	s.bus.remove(s)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// deliver enqueues msg, evicting the oldest unread message when the
// buffer is full. The eviction and the retry happen under the
// subscription lock so concurrent publishers cannot interleave.
func (s *Subscription) deliver(msg domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- msg:
			return
		default:
		}
		select {
		case <-s.ch:
			s.lost++
		default:
			// consumer drained concurrently; retry the send
		}
	}
}
