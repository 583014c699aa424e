// Package eventbus provides an in-memory publish/subscribe bus through which the
// storefront controllers expose observable state. Renderers subscribe to topics
// such as "suggestion.*" or "listquery.navigate" and redraw on each event.
package eventbus

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Event is one published value and the topic it was published on.
type Event struct {
	Topic string
	Data  any
}

type subscriber struct {
	pattern string
	ch      chan Event

	mu     sync.Mutex // guards closed and sends on ch
	closed bool
}

// offer sends without blocking. It reports false when the subscriber is gone
// or its buffer is full.
func (s *subscriber) offer(e Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- e:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// EventBus routes events to subscribers by topic pattern. A nil *EventBus
// accepts Publish and drops everything, so controllers need no bus to run.
type EventBus struct {
	mu      sync.RWMutex
	subs    map[uint64]*subscriber
	nextID  uint64
	dropped atomic.Uint64
}

// New creates an empty bus.
func New() *EventBus {
	return &EventBus{subs: make(map[uint64]*subscriber)}
}

// Subscribe registers interest in pattern and returns the event channel with a
// function that unsubscribes and closes it. Calling the function twice, or
// after Shutdown, is harmless.
func (bus *EventBus) Subscribe(pattern string, bufferSize int) (<-chan Event, func()) {
	sub := &subscriber{pattern: pattern, ch: make(chan Event, bufferSize)}

	bus.mu.Lock()
	bus.nextID++
	id := bus.nextID
	bus.subs[id] = sub
	bus.mu.Unlock()

	return sub.ch, func() {
		bus.mu.Lock()
		delete(bus.subs, id)
		bus.mu.Unlock()
		sub.close()
	}
}

// Publish delivers an event to every matching subscriber without blocking.
// Subscribers with a full buffer miss the event. Safe to call while holding a
// controller lock.
func (bus *EventBus) Publish(topic string, data any) {
	if bus == nil {
		return
	}
	e := Event{Topic: topic, Data: data}

	bus.mu.RLock()
	defer bus.mu.RUnlock()
	for _, sub := range bus.subs {
		if matchTopic(sub.pattern, topic) && !sub.offer(e) {
			bus.dropped.Add(1)
		}
	}
}

// Dropped is the number of deliveries skipped because a subscriber was full.
func (bus *EventBus) Dropped() uint64 {
	if bus == nil {
		return 0
	}
	return bus.dropped.Load()
}

// Shutdown closes every subscriber channel and empties the bus.
func (bus *EventBus) Shutdown() {
	bus.mu.Lock()
	subs := bus.subs
	bus.subs = make(map[uint64]*subscriber)
	bus.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}

// matchTopic supports exact matches, "*" and per-segment wildcards such as
// "suggestion.*".
func matchTopic(pattern, topic string) bool {
	if pattern == "" || topic == "" {
		return false
	}
	if pattern == "*" || pattern == topic {
		return true
	}
	pp := strings.Split(pattern, ".")
	tp := strings.Split(topic, ".")
	if len(pp) != len(tp) {
		return false
	}
	for i := range pp {
		if pp[i] != "*" && pp[i] != tp[i] {
			return false
		}
	}
	return true
}
