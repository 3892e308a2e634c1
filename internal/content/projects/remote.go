package projects

import (
	"context"

	"github.com/odyssey-erp/odyssey-cms/internal/platform/backend"
	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

// Remote reads and deletes projects through the external REST backend.
type Remote struct {
	client *backend.Client
}

// NewRemote returns a source backed by client.
func NewRemote(client *backend.Client) *Remote {
	return &Remote{client: client}
}

func (r *Remote) List(ctx context.Context, q tablestate.ListQuery) (tablestate.Page[Project], error) {
	var page tablestate.Page[Project]
	if err := r.client.List(ctx, Table, q, &page); err != nil {
		return tablestate.Page[Project]{}, err
	}
	return tablestate.NewPage(page.Rows, q, page.Total), nil
}

func (r *Remote) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, Table, id)
}

// DeleteMany stops at the first failure.
func (r *Remote) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	for i, id := range ids {
		if err := r.client.Delete(ctx, Table, id); err != nil {
			return i, err
		}
	}
	return len(ids), nil
}
