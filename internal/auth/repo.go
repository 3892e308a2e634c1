package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-cms/internal/platform/db"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches an admin user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `
SELECT id, email, name, password_hash, is_active, created_at, updated_at
FROM admin_users WHERE lower(email) = lower($1)`, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &user, nil
}

// CreateSession records a login session for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO admin_sessions (id, user_id, created_at, expires_at, ip, user_agent)
VALUES ($1, $2, now(), $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET user_id = EXCLUDED.user_id, expires_at = EXCLUDED.expires_at`,
		id, userID, expiresAt.UTC(), nullable(ip), nullable(ua))
	return db.MapError(err)
}

// DeleteSession removes a session record from the database.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM admin_sessions WHERE id = $1`, id)
	return err
}

var _ Repository = (*PGRepository)(nil)

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CreateUser inserts an admin account, or resets the password and name of an
// existing one with the same email.
func (r *PGRepository) CreateUser(ctx context.Context, email, name, passwordHash string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO admin_users (email, name, password_hash, is_active, created_at, updated_at)
VALUES (lower($1), $2, $3, true, now(), now())
ON CONFLICT (email) DO UPDATE
SET name = EXCLUDED.name, password_hash = EXCLUDED.password_hash, is_active = true, updated_at = now()
RETURNING id`, email, name, passwordHash).Scan(&id)
	if err != nil {
		return 0, db.MapError(err)
	}
	return id, nil
}
