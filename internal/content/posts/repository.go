package posts

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-cms/internal/platform/db"
	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

// PGRepository reads and deletes posts in Postgres.
type PGRepository struct {
	db *pgxpool.Pool
}

// NewRepository returns the Postgres source of posts.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{db: pool}
}

func (r *PGRepository) List(ctx context.Context, q tablestate.ListQuery) (tablestate.Page[Post], error) {
	stmt := listSpec.Build(q)

	var total int
	if err := r.db.QueryRow(ctx, stmt.Count, stmt.CountArgs...).Scan(&total); err != nil {
		return tablestate.Page[Post]{}, fmt.Errorf("posts: count: %w", err)
	}
	rows, err := r.db.Query(ctx, stmt.Query, stmt.Args...)
	if err != nil {
		return tablestate.Page[Post]{}, fmt.Errorf("posts: list: %w", err)
	}
	defer rows.Close()

	var out []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Category, &p.Status, &p.IsFeatured, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return tablestate.Page[Post]{}, fmt.Errorf("posts: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return tablestate.Page[Post]{}, err
	}
	return tablestate.NewPage(out, q, total), nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("posts: delete %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("posts: delete %d: %w", id, db.MapError(pgx.ErrNoRows))
	}
	return nil
}

func (r *PGRepository) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("posts: delete many: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
