package sites

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const siteByIDQuery = `
	SELECT id, hostname, name, created_at
	FROM sites WHERE id = $1
`

const siteByHostnameQuery = `
	SELECT id, hostname, name, created_at
	FROM sites WHERE hostname = $1
`

const listSitesQuery = `
	SELECT id, hostname, name, created_at
	FROM sites ORDER BY id
`

// Repository is the pgx-backed site registry.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a site repository on the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ByID(ctx context.Context, id ID) (Site, error) {
	return r.scanOne(r.pool.QueryRow(ctx, siteByIDQuery, int64(id)))
}

func (r *Repository) ByHostname(ctx context.Context, hostname string) (Site, error) {
	return r.scanOne(r.pool.QueryRow(ctx, siteByHostnameQuery, hostname))
}

func (r *Repository) List(ctx context.Context) ([]Site, error) {
	rows, err := r.pool.Query(ctx, listSitesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Site
	for rows.Next() {
		var site Site
		var id int64
		if err := rows.Scan(&id, &site.Hostname, &site.Name, &site.CreatedAt); err != nil {
			return nil, err
		}
		site.ID = ID(id)
		result = append(result, site)
	}
	return result, rows.Err()
}

func (r *Repository) scanOne(row pgx.Row) (Site, error) {
	var site Site
	var id int64
	err := row.Scan(&id, &site.Hostname, &site.Name, &site.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Site{}, ErrNotFound
	}
	if err != nil {
		return Site{}, err
	}
	site.ID = ID(id)
	return site, nil
}

// Ensure Repository implements Service
var _ Service = (*Repository)(nil)
