package tablestate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

// ErrStale marks a response superseded by a newer request for the same view.
var ErrStale = errors.New("tablestate: stale response")

const (
	defaultTrackedViews = 4096
	defaultFetchTimeout = 30 * time.Second
)

// Page is one page of rows returned by a list endpoint.
type Page[T any] struct {
	Rows       []T `json:"rows"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPage fills the paging metadata for rows fetched with q.
func NewPage[T any](rows []T, q ListQuery, total int) Page[T] {
	if rows == nil {
		rows = []T{}
	}
	size := q.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(size)))
	return Page[T]{Rows: rows, Page: page, Size: size, Total: total, TotalPages: totalPages}
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

// FetchFunc loads one page for q.
type FetchFunc[T any] func(ctx context.Context, q ListQuery) (Page[T], error)

// Binding connects table state to a paginated list source. For every view key
// (one browser view of one table) only the response to the most recent Load
// is delivered; earlier in-flight loads return ErrStale.
type Binding[T any] struct {
	fetch   FetchFunc[T]
	group   singleflight.Group
	timeout time.Duration

	mu          sync.Mutex
	generations *lru.Cache
	counter     uint64
}

// NewBinding wraps fetch.
func NewBinding[T any](fetch FetchFunc[T]) *Binding[T] {
	cache, err := lru.New(defaultTrackedViews)
	if err != nil {
		panic(err)
	}
	return &Binding[T]{fetch: fetch, generations: cache, timeout: defaultFetchTimeout}
}

// Load fetches the page for q on behalf of view. An empty view disables
// stale detection. Identical queries share one fetch; that fetch outlives the
// caller that started it, and each caller stops waiting when its own ctx ends.
func (b *Binding[T]) Load(ctx context.Context, view string, q ListQuery) (Page[T], error) {
	gen := b.begin(view)
	ch := b.group.DoChan(q.Key(), func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
		defer cancel()
		return b.fetch(fetchCtx, q)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return Page[T]{}, fmt.Errorf("tablestate: load page: %w", ctx.Err())
	case res = <-ch:
	}
	if view != "" && !b.isLatest(view, gen) {
		return Page[T]{}, ErrStale
	}
	if res.Err != nil {
		return Page[T]{}, fmt.Errorf("tablestate: load page: %w", res.Err)
	}
	return res.Val.(Page[T]), nil
}

// Generation returns the latest generation issued for view.
func (b *Binding[T]) Generation(view string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.generations.Get(view); ok {
		return v.(uint64)
	}
	return 0
}

func (b *Binding[T]) begin(view string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counter++
	if view != "" {
		b.generations.Add(view, b.counter)
	}
	return b.counter
}

func (b *Binding[T]) isLatest(view string, gen uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.generations.Get(view)
	if !ok {
		// Evicted views cannot be compared; deliver the response.
		return true
	}
	return v.(uint64) == gen
}
