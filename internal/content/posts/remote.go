package posts

import (
	"context"
	"errors"

	"github.com/odyssey-erp/odyssey-cms/internal/platform/backend"
	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

// Remote reads and deletes posts through the external REST backend.
type Remote struct {
	client *backend.Client
}

// NewRemote returns a source backed by client.
func NewRemote(client *backend.Client) *Remote {
	return &Remote{client: client}
}

func (r *Remote) List(ctx context.Context, q tablestate.ListQuery) (tablestate.Page[Post], error) {
	var page tablestate.Page[Post]
	if err := r.client.List(ctx, Table, q, &page); err != nil {
		return tablestate.Page[Post]{}, err
	}
	return tablestate.NewPage(page.Rows, q, page.Total), nil
}

func (r *Remote) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, Table, id)
}

// DeleteMany deletes sequentially and reports every failure.
func (r *Remote) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	var errs []error
	deleted := 0
	for _, id := range ids {
		if err := r.client.Delete(ctx, Table, id); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted++
	}
	return deleted, errors.Join(errs...)
}
