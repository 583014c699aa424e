// Package suggestion runs the long "build me a shopping list" request behind a
// cancellable task. While the backend works, a fixed sequence of captions
// advances on a clock so the user sees progress; the captions say nothing about
// real completion. A successful result navigates once to the suggestion page.
package suggestion

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pac-william/mercado/internal/common/apperrors"
	"github.com/pac-william/mercado/internal/common/clock"
	"github.com/pac-william/mercado/internal/common/eventbus"
	"github.com/pac-william/mercado/internal/common/uuid"
	"github.com/pac-william/mercado/internal/storefront/api"
)

// Status of the controller's current task.
type Status int

const (
	Idle Status = iota
	Running
	Cancelled
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Cancelled:
		return "cancelled"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	TopicState   = "suggestion.state"
	TopicCaption = "suggestion.caption"

	DefaultInterval = 2500 * time.Millisecond
)

// DefaultCaptions play while a suggestion is being prepared.
var DefaultCaptions = []string{
	"Reading your request",
	"Looking for recipes that match",
	"Checking what is in season",
	"Picking the ingredients",
	"Comparing prices across markets",
	"Looking for substitutes",
	"Working out quantities",
	"Grouping items by aisle",
	"Double-checking the list",
	"Almost there",
}

var (
	ErrBlankQuery  = apperrors.ErrValidationFailed.New("tell us what you would like to cook")
	ErrTaskRunning = apperrors.ErrConflict.New("a suggestion is already being prepared")
)

// Creator issues the backend call that creates a suggestion.
type Creator interface {
	CreateSuggestion(ctx context.Context, query string) (api.SuggestionResult, error)
}

// Navigator moves the user to a destination route.
type Navigator interface {
	Navigate(destination string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(destination string)

func (f NavigatorFunc) Navigate(destination string) { f(destination) }

// Options customise a Controller. Zero values fall back to the defaults.
type Options struct {
	Captions []string
	Interval time.Duration
	Clock    clock.Clock
	Bus      *eventbus.EventBus
}

// Snapshot is the observable state of the controller.
type Snapshot struct {
	TaskID      string
	Query       string
	Status      Status
	ActiveIndex int
	Caption     string
}

// Outcome describes how the last task ended.
type Outcome struct {
	TaskID      string
	Query       string
	Status      Status // Succeeded, Failed or Cancelled
	ActiveIndex int    // caption index at the moment the task ended
	Destination string // set on success
	Err         error  // set on failure
}

// StateEvent is published on TopicState for every transition.
type StateEvent struct {
	TaskID      string
	Status      Status
	Destination string
	Err         error
}

// CaptionEvent is published on TopicCaption whenever the caption changes.
type CaptionEvent struct {
	TaskID  string
	Index   int
	Caption string
}

// Controller runs at most one suggestion task at a time.
type Controller struct {
	creator  Creator
	nav      Navigator
	clk      clock.Clock
	bus      *eventbus.EventBus
	captions []string
	interval time.Duration

	mu     sync.Mutex
	gen    uint64 // incremented per task; timers and results carry the gen they belong to
	taskID string
	query  string
	status Status
	index  int
	timer  clock.Timer
	last   *Outcome
	done   chan struct{} // closed when the current task is back to Idle

	inflight sync.WaitGroup
}

// New returns an idle controller.
func New(creator Creator, nav Navigator, opts Options) *Controller {
	c := &Controller{
		creator:  creator,
		nav:      nav,
		clk:      opts.Clock,
		bus:      opts.Bus,
		captions: opts.Captions,
		interval: opts.Interval,
	}
	if c.clk == nil {
		c.clk = clock.Real()
	}
	if len(c.captions) == 0 {
		c.captions = DefaultCaptions
	}
	if c.interval <= 0 {
		c.interval = DefaultInterval
	}
	if c.nav == nil {
		c.nav = NavigatorFunc(func(string) {})
	}
	return c
}

// Start begins a task for query and returns its id. It is rejected when query
// is blank or another task has not yet returned to Idle. ctx bounds the backend
// call only; use Cancel to abandon the task.
func (c *Controller) Start(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrBlankQuery
	}

	c.mu.Lock()
	if c.status != Idle {
		c.mu.Unlock()
		return "", ErrTaskRunning
	}
	c.gen++
	gen := c.gen
	c.taskID = uuid.NewID("task")
	c.query = query
	c.status = Running
	c.index = 0
	c.done = make(chan struct{})
	c.schedule(gen)
	c.publishState("", nil)
	c.publishCaption()
	taskID := c.taskID
	c.inflight.Add(1)
	c.mu.Unlock()

	log.Debug().Str("task_id", taskID).Str("query", query).Msg("suggestion task started")

	go func() {
		defer c.inflight.Done()
		res, err := c.creator.CreateSuggestion(ctx, query)
		c.finish(gen, res, err)
	}()
	return taskID, nil
}

// Cancel abandons the running task. It reports whether there was one; calling
// it in any other state does nothing. The backend call keeps going but its
// result is ignored.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != Running {
		return false
	}
	c.stopTimer()
	c.status = Cancelled
	c.record(nil, "")
	c.publishState("", nil)
	log.Debug().Str("task_id", c.taskID).Int("caption", c.index).Msg("suggestion task cancelled")
	c.reset()
	return true
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		TaskID:      c.taskID,
		Query:       c.query,
		Status:      c.status,
		ActiveIndex: c.index,
	}
	if c.status == Running {
		s.Caption = c.captions[c.index]
	}
	return s
}

// LastOutcome returns how the most recent task ended, if any has.
func (c *Controller) LastOutcome() (Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Outcome{}, false
	}
	return *c.last, true
}

// Wait blocks until the current task, if any, is back to Idle.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Captions returns the caption sequence in use.
func (c *Controller) Captions() []string {
	return append([]string(nil), c.captions...)
}

// tick advances the caption of task gen. Firings that belong to an older task
// or arrive after a terminal transition are dropped.
func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.status != Running {
		return
	}
	c.timer = nil
	if c.index >= len(c.captions)-1 {
		return
	}
	c.index++
	c.publishCaption()
	c.schedule(gen)
}

// finish applies the backend result of task gen. Only the first result for a
// task that is still Running is applied, so a task navigates at most once.
func (c *Controller) finish(gen uint64, res api.SuggestionResult, err error) {
	c.mu.Lock()
	if gen != c.gen || c.status != Running {
		c.mu.Unlock()
		log.Debug().Err(err).Str("suggestion_id", res.ID).Msg("late suggestion result ignored")
		return
	}
	c.stopTimer()

	if err != nil {
		c.status = Failed
		c.record(err, "")
		c.publishState("", err)
		log.Debug().Err(err).Str("task_id", c.taskID).Msg("suggestion task failed")
		c.reset()
		c.mu.Unlock()
		return
	}

	dest := Destination(res.ID)
	c.status = Succeeded
	c.record(nil, dest)
	c.publishState(dest, nil)
	log.Debug().Str("task_id", c.taskID).Str("destination", dest).Int("caption", c.index).Msg("suggestion task succeeded")
	c.mu.Unlock()

	c.nav.Navigate(dest)

	c.mu.Lock()
	if gen == c.gen && c.status == Succeeded {
		c.reset()
	}
	c.mu.Unlock()
}

// Destination is the detail route of a suggestion.
func Destination(id string) string {
	return "/suggestions/" + url.PathEscape(id)
}

func (c *Controller) schedule(gen uint64) {
	if c.index >= len(c.captions)-1 {
		return
	}
	c.timer = c.clk.AfterFunc(c.interval, func() { c.tick(gen) })
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) record(err error, dest string) {
	c.last = &Outcome{
		TaskID:      c.taskID,
		Query:       c.query,
		Status:      c.status,
		ActiveIndex: c.index,
		Destination: dest,
		Err:         err,
	}
}

// reset returns to Idle. Callers hold c.mu.
func (c *Controller) reset() {
	c.status = Idle
	c.publishState("", nil)
	c.taskID = ""
	c.query = ""
	if c.done != nil {
		close(c.done)
	}
}

func (c *Controller) publishState(dest string, err error) {
	c.bus.Publish(TopicState, StateEvent{TaskID: c.taskID, Status: c.status, Destination: dest, Err: err})
}

func (c *Controller) publishCaption() {
	c.bus.Publish(TopicCaption, CaptionEvent{TaskID: c.taskID, Index: c.index, Caption: c.captions[c.index]})
}
