package tablestate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2}, ListQuery{Page: 2, Size: 10}, 21)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())

	empty := NewPage[int](nil, ListQuery{}, 0)
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, DefaultPageSize, empty.Size)
	assert.NotNil(t, empty.Rows)
	assert.False(t, empty.HasNext())
}

func TestBindingDiscardsStaleResponse(t *testing.T) {
	release := map[string]chan struct{}{
		"city=A": make(chan struct{}),
		"city=B": make(chan struct{}),
	}
	started := make(chan string, 2)
	binding := NewBinding(func(ctx context.Context, q ListQuery) (Page[string], error) {
		key := "city=" + Format(q.Filter("city"))
		started <- key
		<-release[key]
		return NewPage([]string{key}, q, 1), nil
	})

	first := ListQuery{Page: 1, Size: 10, Filters: map[string]Value{"city": Str("A")}}
	second := ListQuery{Page: 1, Size: 10, Filters: map[string]Value{"city": Str("B")}}

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = binding.Load(context.Background(), "sess:properties", first)
	}()
	require.Equal(t, "city=A", <-started)

	var secondPage Page[string]
	var secondErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		secondPage, secondErr = binding.Load(context.Background(), "sess:properties", second)
	}()
	require.Equal(t, "city=B", <-started)

	// The newer request resolves first, then the older one arrives late.
	close(release["city=B"])
	close(release["city=A"])
	wg.Wait()

	assert.ErrorIs(t, firstErr, ErrStale)
	require.NoError(t, secondErr)
	assert.Equal(t, []string{"city=B"}, secondPage.Rows)
	assert.EqualValues(t, 2, binding.Generation("sess:properties"))
}

func TestBindingViewsAreIndependent(t *testing.T) {
	binding := NewBinding(func(ctx context.Context, q ListQuery) (Page[int], error) {
		return NewPage([]int{q.Page}, q, 30), nil
	})
	_, err := binding.Load(context.Background(), "a", ListQuery{Page: 1, Size: 10})
	require.NoError(t, err)
	page, err := binding.Load(context.Background(), "b", ListQuery{Page: 2, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, page.Rows)
	page, err = binding.Load(context.Background(), "a", ListQuery{Page: 3, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, page.Rows)
}

func TestBindingWrapsFetchErrors(t *testing.T) {
	boom := errors.New("backend down")
	binding := NewBinding(func(ctx context.Context, q ListQuery) (Page[int], error) {
		return Page[int]{}, boom
	})
	_, err := binding.Load(context.Background(), "v", ListQuery{Page: 1, Size: 10})
	assert.ErrorIs(t, err, boom)
}

func TestBindingSharedFetchSurvivesCancelledCaller(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	fetchErrs := make(chan error, 2)
	binding := NewBinding(func(ctx context.Context, q ListQuery) (Page[string], error) {
		started <- struct{}{}
		<-release
		fetchErrs <- ctx.Err()
		return NewPage([]string{"row"}, q, 1), nil
	})
	q := ListQuery{Page: 1, Size: 10}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := binding.Load(ctxA, "a", q)
		errA <- err
	}()
	<-started

	type result struct {
		page Page[string]
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		page, err := binding.Load(context.Background(), "b", q)
		resB <- result{page, err}
	}()

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	got := <-resB
	require.NoError(t, got.err)
	assert.Equal(t, []string{"row"}, got.page.Rows)
	assert.NoError(t, <-fetchErrs)
}
