package properties

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-cms/internal/platform/backend"
	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

const resource = "properties"

// Remote reads and writes properties through the external REST backend.
type Remote struct {
	client *backend.Client
}

// NewRemote returns a Repository backed by client.
func NewRemote(client *backend.Client) *Remote {
	return &Remote{client: client}
}

func (r *Remote) List(ctx context.Context, q tablestate.ListQuery) (tablestate.Page[Property], error) {
	var page tablestate.Page[Property]
	if err := r.client.List(ctx, resource, q, &page); err != nil {
		return tablestate.Page[Property]{}, err
	}
	return tablestate.NewPage(page.Rows, q, page.Total), nil
}

func (r *Remote) Get(ctx context.Context, id int64) (Property, error) {
	var p Property
	err := r.client.Get(ctx, resource, id, &p)
	return p, err
}

func (r *Remote) Create(ctx context.Context, p Property) (Property, error) {
	var created Property
	if err := r.client.Send(ctx, http.MethodPost, resource, p, &created); err != nil {
		return Property{}, err
	}
	return created, nil
}

func (r *Remote) Update(ctx context.Context, id int64, p Property) error {
	return r.client.Send(ctx, http.MethodPut, resource+"/"+strconv.FormatInt(id, 10), p, nil)
}

func (r *Remote) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, resource, id)
}

// DeleteMany deletes the rows one by one, four at a time.
func (r *Remote) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	var deleted atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := r.client.Delete(ctx, resource, id); err != nil {
				return err
			}
			deleted.Add(1)
			return nil
		})
	}
	err := g.Wait()
	return int(deleted.Load()), err
}

func (r *Remote) ToggleFeatured(ctx context.Context, id int64) (bool, error) {
	var out struct {
		IsFeatured bool `json:"is_featured"`
	}
	path := fmt.Sprintf("%s/%d/featured", resource, id)
	if err := r.client.Send(ctx, http.MethodPost, path, nil, &out); err != nil {
		return false, err
	}
	return out.IsFeatured, nil
}

func (r *Remote) Types(ctx context.Context) ([]PropertyType, error) {
	var types []PropertyType
	if err := r.client.Send(ctx, http.MethodGet, "property-types", nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}
