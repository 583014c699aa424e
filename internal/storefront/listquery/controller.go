// Package listquery keeps list filters, sort order and the current page in the
// query string of a Location, so the query is the single source of truth for
// what a list shows. Free-text search is debounced, out-of-range pages are
// corrected once, and no navigation is issued when the query would not change.
package listquery

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pac-william/mercado/internal/common/apperrors"
	"github.com/pac-william/mercado/internal/common/clock"
	"github.com/pac-william/mercado/internal/common/eventbus"
	"github.com/pac-william/mercado/internal/storefront/api"
)

const (
	PageKey = "page"
	SizeKey = "size"
	NameKey = "name"
	SortKey = "sort"

	TopicNavigate = "listquery.navigate"

	DefaultDebounce     = 500 * time.Millisecond
	DefaultWindowRadius = 2
)

// Navigation reasons carried by NavigateEvent.
const (
	ReasonFilter     = "filter"
	ReasonSearch     = "search"
	ReasonPage       = "page"
	ReasonCorrection = "correction"
)

var ErrPageOutOfRange = apperrors.ErrValidationFailed.New("page out of range")

// NavigateEvent is published on TopicNavigate after every navigation.
type NavigateEvent struct {
	Reason string
	From   string
	To     string
}

// Fetcher loads the list for a query and reports its page metadata.
type Fetcher interface {
	Fetch(ctx context.Context, q url.Values) (api.PageMeta, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, q url.Values) (api.PageMeta, error)

func (f FetcherFunc) Fetch(ctx context.Context, q url.Values) (api.PageMeta, error) {
	return f(ctx, q)
}

type Options struct {
	Debounce time.Duration
	Clock    clock.Clock
	Bus      *eventbus.EventBus
	Fetcher  Fetcher
}

// Controller drives one list view over a Location.
type Controller struct {
	loc      Location
	clk      clock.Clock
	bus      *eventbus.EventBus
	fetcher  Fetcher
	debounce time.Duration

	locMu sync.Mutex // read-modify-write of locations that are not Updaters

	mu      sync.Mutex
	draft   string
	timer   clock.Timer
	typeGen uint64
	meta    api.PageMeta
}

func New(loc Location, opts Options) *Controller {
	c := &Controller{
		loc:      loc,
		clk:      opts.Clock,
		bus:      opts.Bus,
		fetcher:  opts.Fetcher,
		debounce: opts.Debounce,
	}
	if c.clk == nil {
		c.clk = clock.Real()
	}
	if c.debounce <= 0 {
		c.debounce = DefaultDebounce
	}
	c.draft = loc.Query().Get(NameKey)
	return c
}

// Query returns a copy of the current query state.
func (c *Controller) Query() url.Values {
	return c.loc.Query()
}

// Params returns the typed view of the current query.
func (c *Controller) Params() (Params, error) {
	return ParseParams(c.loc.Query())
}

// SetFilter sets key to value, or removes it when value is nil. Changing any
// key other than page sends the list back to page 1. It reports whether a
// navigation happened.
func (c *Controller) SetFilter(key string, value *string) bool {
	return c.navigate(ReasonFilter, func(q url.Values) {
		old, had := q[key]
		if value == nil {
			if !had {
				return
			}
			q.Del(key)
		} else {
			if had && len(old) == 1 && old[0] == *value {
				return
			}
			q.Set(key, *value)
		}
		if key != PageKey {
			q.Del(PageKey)
		}
	})
}

// SetSort selects a sort order; an empty value restores the default.
func (c *Controller) SetSort(value string) bool {
	if value == "" {
		return c.SetFilter(SortKey, nil)
	}
	return c.SetFilter(SortKey, &value)
}

// Type records a keystroke in the search box. The draft changes at once; the
// query follows after the debounce period passes with no further keystrokes.
func (c *Controller) Type(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
	c.stopTimerLocked()
	c.typeGen++
	gen := c.typeGen
	c.timer = c.clk.AfterFunc(c.debounce, func() { c.flush(gen) })
}

// Draft returns the text typed so far.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SearchPending reports whether a debounced search is waiting to be applied.
func (c *Controller) SearchPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// SubmitSearch applies text immediately, dropping any pending debounce. The
// name filter is set, or removed for blank text, and the page is reset.
func (c *Controller) SubmitSearch(text string) bool {
	c.mu.Lock()
	c.stopTimerLocked()
	c.typeGen++
	c.draft = text
	c.mu.Unlock()
	return c.search(text)
}

func (c *Controller) flush(gen uint64) {
	c.mu.Lock()
	if gen != c.typeGen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	text := c.draft
	c.mu.Unlock()
	c.search(text)
}

func (c *Controller) search(text string) bool {
	text = strings.TrimSpace(text)
	return c.navigate(ReasonSearch, func(q url.Values) {
		if text == "" {
			q.Del(NameKey)
		} else {
			q.Set(NameKey, text)
		}
		q.Del(PageKey)
	})
}

// GoToPage moves to page n of the last observed metadata. Pages outside
// [1, totalPages] are rejected without navigating. Page 1 is the query
// without a page key.
func (c *Controller) GoToPage(n int) error {
	c.mu.Lock()
	total := c.meta.TotalPages
	c.mu.Unlock()
	if n < 1 || n > total {
		return ErrPageOutOfRange.New(fmt.Sprintf("page %d is outside 1..%d", n, total))
	}
	c.navigate(ReasonPage, func(q url.Values) {
		if n == 1 {
			q.Del(PageKey)
		} else {
			q.Set(PageKey, strconv.Itoa(n))
		}
	})
	return nil
}

// Observe records metadata from a refresh. When the server reports a current
// page past the last page, it navigates to page 1. An empty result
// (totalPages 0) counts: page 2 of nothing is corrected too. The correction
// only fires while the query still asks for a page past the end, so observing
// the same stale metadata again cannot navigate a second time.
func (c *Controller) Observe(meta api.PageMeta) bool {
	c.mu.Lock()
	c.meta = meta
	c.mu.Unlock()

	if meta.CurrentPage <= meta.TotalPages {
		return false
	}
	return c.navigate(ReasonCorrection, func(q url.Values) {
		if pageOf(q) <= meta.TotalPages {
			return
		}
		q.Del(PageKey)
	})
}

// Meta returns the last observed metadata.
func (c *Controller) Meta() api.PageMeta {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta
}

// Refresh fetches the list for the current query and observes the result. If
// that triggers a correction the list is fetched once more for page 1.
func (c *Controller) Refresh(ctx context.Context) (api.PageMeta, error) {
	if c.fetcher == nil {
		return api.PageMeta{}, apperrors.New("list controller has no fetcher")
	}
	meta, err := c.fetcher.Fetch(ctx, c.loc.Query())
	if err != nil {
		return meta, err
	}
	if !c.Observe(meta) {
		return meta, nil
	}
	meta, err = c.fetcher.Fetch(ctx, c.loc.Query())
	if err != nil {
		return meta, err
	}
	c.mu.Lock()
	c.meta = meta
	c.mu.Unlock()
	return meta, nil
}

// Window returns the page numbers to render around the current page.
func (c *Controller) Window(radius int) []int {
	return PageWindow(c.Meta(), radius)
}

// PageWindow returns up to 2*radius+1 consecutive page numbers around the
// current page, shifted to stay within [1, totalPages].
func PageWindow(meta api.PageMeta, radius int) []int {
	total := meta.TotalPages
	if total < 1 {
		return nil
	}
	if radius < 0 {
		radius = 0
	}
	cur := min(max(meta.CurrentPage, 1), total)
	start := max(1, cur-radius)
	end := min(total, cur+radius)
	if span := 2 * radius; end-start < span {
		if start == 1 {
			end = min(total, start+span)
		} else {
			start = max(1, end-span)
		}
	}
	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// navigate applies mutate to a copy of the current query and writes the result
// back in one step, unless it equals the current query.
func (c *Controller) navigate(reason string, mutate func(q url.Values)) bool {
	var from, to string
	apply := func(cur url.Values) (url.Values, bool) {
		next := cloneValues(cur)
		mutate(next)
		from, to = cur.Encode(), next.Encode()
		return next, from != to
	}

	var changed bool
	if u, ok := c.loc.(Updater); ok {
		changed = u.Update(apply)
	} else {
		c.locMu.Lock()
		next, ok := apply(c.loc.Query())
		if ok {
			c.loc.Replace(next)
		}
		c.locMu.Unlock()
		changed = ok
	}
	if !changed {
		return false
	}
	log.Debug().Str("reason", reason).Str("from", from).Str("to", to).Msg("list navigation")
	c.bus.Publish(TopicNavigate, NavigateEvent{Reason: reason, From: from, To: to})
	return true
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func pageOf(q url.Values) int {
	n, err := strconv.Atoi(q.Get(PageKey))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
