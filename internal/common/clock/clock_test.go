package clock

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	c := NewManual(epoch)
	var fired []string
	c.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "a") })
	c.AfterFunc(5*time.Second, func() { fired = append(fired, "c") })

	c.Advance(3 * time.Second)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, epoch.Add(3*time.Second), c.Now())
	assert.Equal(t, 1, c.Pending())
}

func TestManualStop(t *testing.T) {
	c := NewManual(epoch)
	called := false
	tm := c.AfterFunc(time.Second, func() { called = true })
	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())
	c.Advance(time.Minute)
	assert.False(t, called)
	assert.Equal(t, 0, c.Pending())
}

func TestManualRescheduleDuringAdvance(t *testing.T) {
	c := NewManual(epoch)
	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		c.AfterFunc(time.Second, tick)
	}
	c.AfterFunc(time.Second, tick)

	c.Advance(3500 * time.Millisecond)
	assert.Equal(t, 3, ticks)
	assert.Equal(t, 1, c.Pending())
}

func TestStopAfterFire(t *testing.T) {
	c := NewManual(epoch)
	tm := c.AfterFunc(time.Second, func() {})
	c.Advance(time.Second)
	assert.False(t, tm.Stop())
}

func TestRealClock(t *testing.T) {
	done := make(chan struct{})
	Real().AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
}

func TestWrapFakeClock(t *testing.T) {
	fake := clockwork.NewFakeClockAt(epoch)
	c := Wrap(fake)
	assert.Equal(t, epoch, c.Now())

	done := make(chan struct{})
	c.AfterFunc(time.Second, func() { close(done) })
	stopped := c.AfterFunc(time.Second, func() { t.Error("stopped timer fired") })
	require.True(t, stopped.Stop())

	fake.Advance(999 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("fired early")
	default:
	}
	fake.Advance(time.Millisecond)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("fake timer did not fire")
	}
	assert.Equal(t, epoch.Add(time.Second), c.Now())
}
