package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/odyssey-erp/odyssey-cms/internal/platform/httpx"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, MapError(nil))
	assert.ErrorIs(t, MapError(fmt.Errorf("scan: %w", pgx.ErrNoRows)), httpx.ErrNotFound)

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "properties_slug_key"}
	err := MapError(dup)
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
	assert.Contains(t, err.Error(), "properties_slug_key")

	other := errors.New("connection reset")
	assert.Equal(t, other, MapError(other))
}
