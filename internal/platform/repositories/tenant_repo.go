package repositories

import (
	"context"
	"database/sql"
)

type TenantRepository struct {
	db *sql.DB
}

func NewTenantRepository(db *sql.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// Ensure inserts the tenant row if it is absent. INSERT OR IGNORE makes
// concurrent first-touch safe: the losing insert is swallowed by the
// store instead of surfacing a duplicate-key fault.
func (r *TenantRepository) Ensure(ctx context.Context, id string, now int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO tenants (id, registered_at) VALUES (?, ?)`, id, now)
	return err
}

func (r *TenantRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tenants WHERE id = ?)`, id).Scan(&exists)
	return exists, err
}
