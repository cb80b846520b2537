package service

import (
	"sync"

	"github.com/limbo/focusbear/pkg/entity"
)

type EventKind string

const (
	EventSessionStarted   EventKind = "session_started"
	EventSessionCompleted EventKind = "session_completed"
	EventSessionAborted   EventKind = "session_aborted"
)

// Event carries the session record a lifecycle transition happened to.
type Event struct {
	Kind    EventKind
	Session *entity.FocusSession
}

type EventPublisherI interface {
	Publish(event Event)
}

// FanoutPublisher delivers events synchronously to every subscriber.
// The engine only depends on EventPublisherI, so notifiers can be
// swapped without touching it.
type FanoutPublisher struct {
	mu   sync.RWMutex
	subs []func(Event)
}

func NewFanoutPublisher() *FanoutPublisher {
	return &FanoutPublisher{}
}

func (p *FanoutPublisher) Subscribe(fn func(Event)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

func (p *FanoutPublisher) Publish(event Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, fn := range p.subs {
		fn(event)
	}
}
