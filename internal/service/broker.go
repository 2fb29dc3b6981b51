package service

import (
	"sync"

	"github.com/oblozinskyroman/stars/internal/domain"
)

// SessionBroker broadcasts auth-state transitions to subscribers. The session
// service is its only writer; everyone else subscribes.
//
// Each subscriber gets a buffered channel of one event with replace
// semantics: a slow consumer sees the newest event, never a backlog of
// stale ones.
type SessionBroker struct {
	mu   sync.Mutex
	subs map[int]chan domain.AuthEvent
	next int
}

// NewSessionBroker creates an empty broker.
func NewSessionBroker() *SessionBroker {
	return &SessionBroker{subs: make(map[int]chan domain.AuthEvent)}
}

// Subscribe registers a listener and returns its channel plus an
// unsubscribe function. Unsubscribe is idempotent and closes the channel.
func (b *SessionBroker) Subscribe() (<-chan domain.AuthEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan domain.AuthEvent, 1)
	b.subs[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
	return ch, unsubscribe
}

// Publish delivers the event to every subscriber, replacing any undelivered
// older event in a subscriber's buffer.
func (b *SessionBroker) Publish(ev domain.AuthEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Drain the stale event, then deliver the new one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// SubscriberCount reports how many listeners are registered.
func (b *SessionBroker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
