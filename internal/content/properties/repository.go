package properties

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-cms/internal/platform/db"
	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

// Repository persists properties.
type Repository interface {
	List(ctx context.Context, q tablestate.ListQuery) (tablestate.Page[Property], error)
	Get(ctx context.Context, id int64) (Property, error)
	Create(ctx context.Context, p Property) (Property, error)
	Update(ctx context.Context, id int64, p Property) error
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) (int, error)
	ToggleFeatured(ctx context.Context, id int64) (bool, error)
	Types(ctx context.Context) ([]PropertyType, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the Postgres repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const selectColumns = `id, title, slug, property_type_id, status, price, city, state, bedrooms, bathrooms, is_active, is_featured, created_at, updated_at`

func scanProperty(row pgx.Row) (Property, error) {
	var p Property
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.PropertyTypeID, &p.Status, &p.Price, &p.City, &p.State,
		&p.Bedrooms, &p.Bathrooms, &p.IsActive, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, q tablestate.ListQuery) (tablestate.Page[Property], error) {
	stmt := listSpec.Build(q)

	var total int
	if err := r.db.QueryRow(ctx, stmt.Count, stmt.CountArgs...).Scan(&total); err != nil {
		return tablestate.Page[Property]{}, fmt.Errorf("properties: count: %w", err)
	}

	rows, err := r.db.Query(ctx, stmt.Query, stmt.Args...)
	if err != nil {
		return tablestate.Page[Property]{}, fmt.Errorf("properties: list: %w", err)
	}
	defer rows.Close()

	var out []Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return tablestate.Page[Property]{}, fmt.Errorf("properties: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return tablestate.Page[Property]{}, err
	}
	return tablestate.NewPage(out, q, total), nil
}

func (r *repository) Get(ctx context.Context, id int64) (Property, error) {
	p, err := scanProperty(r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM properties WHERE id = $1`, id))
	if err != nil {
		return Property{}, fmt.Errorf("properties: get %d: %w", id, db.MapError(err))
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, p Property) (Property, error) {
	now := time.Now().UTC()
	query := `INSERT INTO properties (title, slug, property_type_id, status, price, city, state, bedrooms, bathrooms, is_active, is_featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12) RETURNING id`
	err := r.db.QueryRow(ctx, query, p.Title, p.Slug, p.PropertyTypeID, p.Status, p.Price, p.City, p.State,
		p.Bedrooms, p.Bathrooms, p.IsActive, p.IsFeatured, now).Scan(&p.ID)
	if err != nil {
		return Property{}, fmt.Errorf("properties: create: %w", db.MapError(err))
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

func (r *repository) Update(ctx context.Context, id int64, p Property) error {
	query := `UPDATE properties SET title = $1, slug = $2, property_type_id = $3, status = $4, price = $5, city = $6, state = $7,
		bedrooms = $8, bathrooms = $9, is_active = $10, is_featured = $11, updated_at = $12 WHERE id = $13`
	tag, err := r.db.Exec(ctx, query, p.Title, p.Slug, p.PropertyTypeID, p.Status, p.Price, p.City, p.State,
		p.Bedrooms, p.Bathrooms, p.IsActive, p.IsFeatured, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("properties: update %d: %w", id, db.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("properties: update %d: %w", id, db.MapError(pgx.ErrNoRows))
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("properties: delete %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("properties: delete %d: %w", id, db.MapError(pgx.ErrNoRows))
	}
	return nil
}

func (r *repository) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	var deleted int
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM properties WHERE id = ANY($1)`, ids)
		if err != nil {
			return err
		}
		deleted = int(tag.RowsAffected())
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("properties: delete many: %w", err)
	}
	return deleted, nil
}

func (r *repository) ToggleFeatured(ctx context.Context, id int64) (bool, error) {
	var featured bool
	err := r.db.QueryRow(ctx, `UPDATE properties SET is_featured = NOT is_featured, updated_at = now() WHERE id = $1 RETURNING is_featured`, id).Scan(&featured)
	if err != nil {
		return false, fmt.Errorf("properties: toggle featured %d: %w", id, db.MapError(err))
	}
	return featured, nil
}

func (r *repository) Types(ctx context.Context) ([]PropertyType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM property_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("properties: types: %w", err)
	}
	defer rows.Close()
	var out []PropertyType
	for rows.Next() {
		var t PropertyType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
