package listquery

import (
	"net/url"
	"sync"
)

// Location is the store that owns the query state, the way a browser address
// bar does. Replace must not reload anything; it only records the new query.
type Location interface {
	Query() url.Values
	Replace(q url.Values)
}

// Updater is implemented by locations that can apply a read-modify-write
// atomically. fn receives a copy of the current query and reports whether its
// result should replace it.
type Updater interface {
	Update(fn func(cur url.Values) (url.Values, bool)) bool
}

// MemoryLocation is an in-process Location that remembers every navigation.
type MemoryLocation struct {
	mu          sync.Mutex
	path        string
	query       url.Values
	navigations []string
}

// NewMemoryLocation starts at rawURL, e.g. "/products?page=2".
func NewMemoryLocation(rawURL string) (*MemoryLocation, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return &MemoryLocation{path: u.Path, query: u.Query()}, nil
}

func (l *MemoryLocation) Query() url.Values {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneValues(l.query)
}

func (l *MemoryLocation) Replace(q url.Values) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.replaceLocked(q)
}

func (l *MemoryLocation) Update(fn func(cur url.Values) (url.Values, bool)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	next, ok := fn(cloneValues(l.query))
	if !ok {
		return false
	}
	l.replaceLocked(next)
	return true
}

// URL returns the current path and query.
func (l *MemoryLocation) URL() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.urlLocked()
}

// Navigations returns the URLs written since creation, oldest first.
func (l *MemoryLocation) Navigations() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.navigations...)
}

func (l *MemoryLocation) replaceLocked(q url.Values) {
	l.query = cloneValues(q)
	l.navigations = append(l.navigations, l.urlLocked())
}

func (l *MemoryLocation) urlLocked() string {
	return buildURL(l.path, l.query)
}

func buildURL(path string, q url.Values) string {
	if enc := q.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}
