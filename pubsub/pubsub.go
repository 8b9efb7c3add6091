// Package pubsub fans messages out to subscribers without ever blocking the
// publisher.
package pubsub

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type SubscriptionID int64

type Pubsub[T any] struct {
	nextID      SubscriptionID
	buffer      int
	subscribers map[SubscriptionID]chan T
	mu          sync.RWMutex
	dropped     atomic.Int64
	log         zerolog.Logger
}

// New returns a Pubsub whose subscriber channels hold up to buffer
// messages. A subscriber that falls further behind loses messages.
func New[T any](buffer int) *Pubsub[T] {
	if buffer < 0 {
		buffer = 0
	}
	return &Pubsub[T]{
		buffer:      buffer,
		subscribers: make(map[SubscriptionID]chan T),
		log:         log.With().Str("component", "pubsub").Logger(),
	}
}

func (ps *Pubsub[T]) Subscribe() (SubscriptionID, <-chan T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan T, ps.buffer)
	id := ps.nextID
	ps.subscribers[id] = ch
	ps.nextID++

	ps.log.Debug().Int64("subscription_id", int64(id)).Msg("Subscribed")
	return id, ch
}

// Unsubscribe closes the subscriber's channel. Unknown ids are ignored.
func (ps *Pubsub[T]) Unsubscribe(id SubscriptionID) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch, ok := ps.subscribers[id]
	if !ok {
		return
	}

	delete(ps.subscribers, id)
	close(ch)
	ps.log.Debug().Int64("subscription_id", int64(id)).Msg("Unsubscribed")
}

func (ps *Pubsub[T]) Publish(msg T) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for id, ch := range ps.subscribers {
		select {
		case ch <- msg:
		default:
			ps.dropped.Add(1)
			ps.log.Warn().
				Int64("subscription_id", int64(id)).
				Interface("message", msg).
				Msg("Message dropped, channel full")
		}
	}
}

func (ps *Pubsub[T]) Subscribers() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.subscribers)
}

// Dropped counts messages lost to full subscriber channels.
func (ps *Pubsub[T]) Dropped() int64 {
	return ps.dropped.Load()
}
