package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const getAttributeQuery = `
	SELECT value FROM user_attributes
	WHERE user_id = $1 AND name = $2
`

const setAttributeQuery = `
	INSERT INTO user_attributes (user_id, name, value)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id, name) DO UPDATE
	SET value = EXCLUDED.value, updated_at = now()
`

// Repository is the pgx-backed attribute store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an attribute repository on the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetAttribute(ctx context.Context, userID uuid.UUID, name string) ([]byte, error) {
	var value []byte
	err := r.pool.QueryRow(ctx, getAttributeQuery, userID, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAttributeNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *Repository) SetAttribute(ctx context.Context, userID uuid.UUID, name string, value []byte) error {
	_, err := r.pool.Exec(ctx, setAttributeQuery, userID, name, value)
	return err
}

// Ensure Repository implements AttributeStore
var _ AttributeStore = (*Repository)(nil)
