// Package clock provides the time source used by the storefront controllers.
// Controllers schedule caption ticks and debounce timers through a Clock so
// tests can drive them deterministically with a Manual clock.
package clock

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer is a pending callback that can be stopped.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer; false means it already fired or was stopped.
	Stop() bool
}

// Clock schedules callbacks and reports the current time.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type wrapped struct {
	c clockwork.Clock
}

// Real returns a Clock backed by the wall clock.
func Real() Clock {
	return Wrap(clockwork.NewRealClock())
}

// Wrap adapts a clockwork clock. Callbacks scheduled through a wrapped clock
// run on their own goroutine, as with time.AfterFunc.
func Wrap(c clockwork.Clock) Clock {
	return wrapped{c: c}
}

func (w wrapped) Now() time.Time {
	return w.c.Now()
}

func (w wrapped) AfterFunc(d time.Duration, f func()) Timer {
	return w.c.AfterFunc(d, f)
}

// Manual is a Clock that only moves when Advance is called. Callbacks run
// synchronously on the goroutine calling Advance, in deadline order.
type Manual struct {
	mu     sync.Mutex
	fake   *clockwork.FakeClock
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	clock   *Manual
	at      time.Time
	seq     uint64
	f       func()
	stopped bool
	fired   bool
}

// NewManual returns a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{fake: clockwork.NewFakeClockAt(start)}
}

func (m *Manual) Now() time.Time {
	return m.fake.Now()
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{clock: m, at: m.fake.Now().Add(d), seq: m.seq, f: f}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d, firing every timer that becomes due,
// including timers scheduled by callbacks during the advance.
func (m *Manual) Advance(d time.Duration) {
	target := m.fake.Now().Add(d)

	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		t.f()
	}

	m.moveTo(target)
}

func (m *Manual) moveTo(t time.Time) {
	if d := t.Sub(m.fake.Now()); d > 0 {
		m.fake.Advance(d)
	}
}

// nextDue pops the earliest live timer due at or before target and moves the
// clock to its deadline.
func (m *Manual) nextDue(target time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	m.timers = live
	if len(m.timers) == 0 {
		return nil
	}
	sort.Slice(m.timers, func(i, j int) bool {
		if m.timers[i].at.Equal(m.timers[j].at) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].at.Before(m.timers[j].at)
	})
	t := m.timers[0]
	if t.at.After(target) {
		return nil
	}
	t.fired = true
	m.moveTo(t.at)
	return t
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
