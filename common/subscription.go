package common

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const subscriptionChanSize = 16

// SubscriptionTarget defines the interface between a subscription and its
// target object
type SubscriptionTarget interface {
	NewSubscription() (*Subscription, error)
	CloseSubscription(*Subscription) error
}

// Subscription exposes an event channel for consumers, and attaches to a
// SubscriptionTarget, that will feed it with events
type Subscription struct {
	events   chan interface{}
	quitChan chan struct{}
	id       uuid.UUID
	target   SubscriptionTarget
	once     sync.Once
}

// ID returns the unique ID for this subscription
func (s *Subscription) ID() string {
	return s.id.String()
}

// Events returns a chan reader for reading events published to this
// subscription
func (s *Subscription) Events() <-chan interface{} {
	return s.events
}

// Write pushes an event onto the events channel. Slow consumers cause Write to
// give up after DefaultTimeout.
func (s *Subscription) Write(event interface{}) error {
	select {
	case <-s.quitChan:
		return ErrClosed
	default:
	}

	timeout := time.NewTimer(DefaultTimeout)
	defer timeout.Stop()
	select {
	case <-s.quitChan:
		return ErrClosed
	case s.events <- event:
		return nil
	case <-timeout.C:
		return ErrTimeout
	}
}

// Close cleans up resources and notifies the target that the subscription
// should no longer be used. It is important to close subscriptions when you
// are done with them to avoid blocking publishers.
func (s *Subscription) Close() error {
	closed := false
	s.once.Do(func() {
		close(s.quitChan)
		closed = true
	})
	if !closed {
		Log.Warnf(`subscription %s already closed`, s.ID())
		return ErrClosed
	}
	return s.target.CloseSubscription(s)
}

// NewSubscription returns a *Subscription attached to the specified target
func NewSubscription(target SubscriptionTarget) *Subscription {
	return &Subscription{
		events:   make(chan interface{}, subscriptionChanSize),
		quitChan: make(chan struct{}),
		id:       uuid.New(),
		target:   target,
	}
}

// Publisher fans events out to a set of subscriptions. It is embedded by every
// SubscriptionTarget in this module.
type Publisher struct {
	subscriptions map[string]*Subscription
	mu            sync.RWMutex
}

// Subscribe registers sub with the publisher
func (p *Publisher) Subscribe(sub *Subscription) {
	p.mu.Lock()
	if p.subscriptions == nil {
		p.subscriptions = make(map[string]*Subscription)
	}
	p.subscriptions[sub.ID()] = sub
	p.mu.Unlock()
}

// Unsubscribe removes sub from the publisher, returning ErrNotFound if it was
// never registered
func (p *Publisher) Unsubscribe(sub *Subscription) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.subscriptions[sub.ID()]; !ok {
		return ErrNotFound
	}
	delete(p.subscriptions, sub.ID())
	return nil
}

// Publish pushes an event to all subscribers, returning the first error
// encountered. Every subscriber is attempted.
func (p *Publisher) Publish(event interface{}) error {
	p.mu.RLock()
	subs := make([]*Subscription, 0, len(p.subscriptions))
	for _, sub := range p.subscriptions {
		subs = append(subs, sub)
	}
	p.mu.RUnlock()

	var first error
	for _, sub := range subs {
		if err := sub.Write(event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
