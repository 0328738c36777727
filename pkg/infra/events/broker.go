package events

import (
	"context"
	"sync"

	"github.com/m-mizutani/romfetch/pkg/domain/model"
)

const defaultBufferSize = 64

// Broker fans events out to every live subscription in emission order.
// Emit blocks while a subscriber's buffer is full, so a slow reader slows
// the download down instead of losing its complete event. A closed
// subscription never blocks the emitter.
type Broker struct {
	mu         sync.RWMutex
	subs       map[*Subscription]struct{}
	bufferSize int
}

// BrokerOption configures Broker
type BrokerOption func(*Broker)

// WithBufferSize sets the channel capacity of new subscriptions
func WithBufferSize(size int) BrokerOption {
	return func(b *Broker) {
		if size >= 0 {
			b.bufferSize = size
		}
	}
}

// NewBroker creates an empty Broker
func NewBroker(opts ...BrokerOption) *Broker {
	b := &Broker{
		subs:       make(map[*Subscription]struct{}),
		bufferSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscription receives events emitted after it was created
type Subscription struct {
	broker *Broker
	ch     chan model.Event
	done   chan struct{}
	once   sync.Once
}

// Events returns the channel events are delivered on. It is never closed;
// select on Done as well.
func (s *Subscription) Events() <-chan model.Event {
	return s.ch
}

// Done is closed when the subscription is closed
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close detaches the subscription from the broker. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
		s.broker.remove(s)
	})
}

// Subscribe registers a new subscription
func (b *Broker) Subscribe() *Subscription {
	sub := &Subscription{
		broker: b,
		ch:     make(chan model.Event, b.bufferSize),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	return sub
}

func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
}

// Len returns the number of live subscriptions
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Emit delivers event to all subscriptions. It returns ctx.Err() if ctx is
// cancelled while waiting on a full subscriber.
func (b *Broker) Emit(ctx context.Context, event model.Event) error {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.ch <- event:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// Func adapts a plain function to interfaces.EventEmitter
type Func func(ctx context.Context, event model.Event) error

// Emit calls f
func (f Func) Emit(ctx context.Context, event model.Event) error {
	return f(ctx, event)
}
