package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/odyssey-cms/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-cms/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

// Source is where the rows of a table live: the local database or the remote
// REST backend.
type Source[T any] interface {
	List(ctx context.Context, q tablestate.ListQuery) (tablestate.Page[T], error)
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) (int, error)
}

// Warmer schedules the re-population of a table's cached first page.
type Warmer interface {
	EnqueueListWarmup(ctx context.Context, table string) error
}

// Service serves the pages of one table through the list cache and the
// stale-aware binding, and invalidates the cache on writes.
type Service[T any] struct {
	table   string
	schema  tablestate.Schema
	source  Source[T]
	cache   *cache.ListCache
	binding *tablestate.Binding[T]
	warmer  Warmer
	logger  *slog.Logger
}

// NewService wires a table service. cache and warmer may be nil.
func NewService[T any](schema tablestate.Schema, source Source[T], listCache *cache.ListCache, warmer Warmer, logger *slog.Logger) *Service[T] {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service[T]{
		table:  schema.Name,
		schema: schema,
		source: source,
		cache:  listCache,
		warmer: warmer,
		logger: logger.With(slog.String("table", schema.Name)),
	}
	s.binding = tablestate.NewBinding(s.List)
	return s
}

// Table returns the table name.
func (s *Service[T]) Table() string {
	return s.table
}

// Schema returns the table schema.
func (s *Service[T]) Schema() tablestate.Schema {
	return s.schema
}

// List returns one page for q, from the cache when possible.
func (s *Service[T]) List(ctx context.Context, q tablestate.ListQuery) (tablestate.Page[T], error) {
	var page tablestate.Page[T]
	err := s.cache.FetchJSON(ctx, s.table, q.Key(), &page, func(ctx context.Context) (any, error) {
		return s.source.List(ctx, q)
	})
	if err != nil {
		return tablestate.Page[T]{}, fmt.Errorf("%s: list: %w", s.table, err)
	}
	return page, nil
}

// Load returns the page for q on behalf of a browser view. It fails with
// tablestate.ErrStale when a newer load for the same view was started.
func (s *Service[T]) Load(ctx context.Context, view string, q tablestate.ListQuery) (tablestate.Page[T], error) {
	return s.binding.Load(ctx, view, q)
}

// Delete removes one row.
func (s *Service[T]) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%s: invalid id %d: %w", s.table, id, httpx.ErrValidation)
	}
	if err := s.source.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: delete %d: %w", s.table, id, err)
	}
	s.Invalidate(ctx)
	return nil
}

// DeleteMany removes the given rows and schedules a warmup of the table.
func (s *Service[T]) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%s: nothing selected: %w", s.table, httpx.ErrValidation)
	}
	n, err := s.source.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("%s: bulk delete: %w", s.table, err)
	}
	s.Invalidate(ctx)
	if s.warmer != nil {
		if err := s.warmer.EnqueueListWarmup(ctx, s.table); err != nil {
			s.logger.Warn("enqueue list warmup", slog.Any("error", err))
		}
	}
	return n, nil
}

// Invalidate drops every cached page of the table.
func (s *Service[T]) Invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx, s.table); err != nil {
		s.logger.Warn("bump list cache", slog.Any("error", err))
	}
}

// Warm loads the default first page so the next visitor hits the cache.
func (s *Service[T]) Warm(ctx context.Context) (int, error) {
	q := tablestate.NewListQuery(s.schema, s.schema.Defaults())
	if _, err := s.List(ctx, q); err != nil {
		return 0, err
	}
	return 1, nil
}

// IsStale reports whether err marks a superseded load.
func IsStale(err error) bool {
	return errors.Is(err, tablestate.ErrStale)
}
