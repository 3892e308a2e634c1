package properties

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-cms/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

type fakeRepo struct {
	mu       sync.Mutex
	rows     map[int64]Property
	nextID   int64
	created  []Property
	deleted  []int64
	lastList tablestate.ListQuery
	err      error
}

func newFakeRepo(rows ...Property) *fakeRepo {
	repo := &fakeRepo{rows: map[int64]Property{}, nextID: 100}
	for _, p := range rows {
		repo.rows[p.ID] = p
	}
	return repo
}

func (f *fakeRepo) List(_ context.Context, q tablestate.ListQuery) (tablestate.Page[Property], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = q
	rows := make([]Property, 0, len(f.rows))
	for _, p := range f.rows {
		rows = append(rows, p)
	}
	return tablestate.NewPage(rows, q, len(rows)), nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return Property{}, httpx.ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) Create(_ context.Context, p Property) (Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return Property{}, f.err
	}
	f.nextID++
	p.ID = f.nextID
	f.rows[p.ID] = p
	f.created = append(f.created, p)
	return p, nil
}

func (f *fakeRepo) Update(_ context.Context, id int64, p Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return httpx.ErrNotFound
	}
	p.ID = id
	f.rows[id] = p
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	delete(f.rows, id)
	return nil
}

func (f *fakeRepo) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	for _, id := range ids {
		_ = f.Delete(ctx, id)
	}
	return len(ids), nil
}

func (f *fakeRepo) ToggleFeatured(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return false, httpx.ErrNotFound
	}
	p.IsFeatured = !p.IsFeatured
	f.rows[id] = p
	return p.IsFeatured, nil
}

func (f *fakeRepo) Types(context.Context) ([]PropertyType, error) {
	return []PropertyType{{ID: 1, Name: "House"}, {ID: 2, Name: "Apartment"}}, nil
}

func validForm() PropertyForm {
	return PropertyForm{
		Title:          "  Lakeside Cottage ",
		PropertyTypeID: 1,
		Status:         StatusAvailable,
		Price:          325000,
		City:           "Madison",
		Bedrooms:       3,
		Bathrooms:      2,
		IsActive:       true,
	}
}

func TestCreateGeneratesSlug(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, nil)

	created, err := svc.Create(context.Background(), validForm())
	require.NoError(t, err)
	assert.Equal(t, "Lakeside Cottage", created.Title)
	assert.Equal(t, "lakeside-cottage", created.Slug)
	assert.Equal(t, int64(101), created.ID)
}

func TestCreateKeepsExplicitSlug(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil, nil)
	form := validForm()
	form.Slug = "cottage-by-the-lake"

	created, err := svc.Create(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "cottage-by-the-lake", created.Slug)
}

func TestCreateReportsInvalidFields(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, nil)
	form := PropertyForm{Title: " ", Status: "auction", City: ""}

	_, err := svc.Create(context.Background(), form)
	require.Error(t, err)
	assert.ErrorIs(t, err, httpx.ErrValidation)

	var formErr *FormError
	require.True(t, errors.As(err, &formErr))
	assert.Equal(t, "is required", formErr.Fields["title"])
	assert.Equal(t, "is required", formErr.Fields["city"])
	assert.Equal(t, "must be selected", formErr.Fields["property_type_id"])
	assert.Equal(t, "must be one of available sold rented draft", formErr.Fields["status"])
	assert.Empty(t, repo.created)
}

func TestUpdateRejectsInvalidID(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil, nil)
	err := svc.Update(context.Background(), 0, validForm())
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateMissingProperty(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil, nil)
	err := svc.Update(context.Background(), 9, validForm())
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestToggleFeatured(t *testing.T) {
	repo := newFakeRepo(Property{ID: 5, Title: "Loft"})
	svc := NewService(repo, nil, nil, nil)

	featured, err := svc.ToggleFeatured(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, featured)

	featured, err = svc.ToggleFeatured(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, featured)
}

func TestGetRejectsInvalidID(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil, nil)
	_, err := svc.Get(context.Background(), -1)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}
