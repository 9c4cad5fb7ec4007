package repositories

import (
	"context"
	"database/sql"

	"gitroute/internal/platform/models"
)

type WebhookRepository struct {
	db *sql.DB
}

func NewWebhookRepository(db *sql.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

func (r *WebhookRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

// CountByTenantTx runs inside the caller's transaction so the quota
// check and the insert commit as one unit.
func (r *WebhookRepository) CountByTenantTx(tx *sql.Tx, tenantID string) (int, error) {
	var count int
	err := tx.QueryRow(`SELECT COUNT(1) FROM webhooks WHERE tenant_id = ?`, tenantID).Scan(&count)
	return count, err
}

func (r *WebhookRepository) CreateTx(tx *sql.Tx, w *models.Webhook) error {
	_, err := tx.Exec(`
		INSERT INTO webhooks (id, tenant_id, comment, secret, broken, created_by, last_updated_by, created_at, last_updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, w.ID, w.TenantID, w.Comment, w.Secret, w.Broken, w.CreatedBy, w.LastUpdatedBy, w.CreatedAt, w.LastUpdatedAt)
	return err
}

func (r *WebhookRepository) GetByID(ctx context.Context, id, tenantID string) (*models.Webhook, error) {
	w := &models.Webhook{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, comment, secret, broken, created_by, last_updated_by, created_at, last_updated_at
		FROM webhooks WHERE id = ? AND tenant_id = ?
	`, id, tenantID).Scan(&w.ID, &w.TenantID, &w.Comment, &w.Secret, &w.Broken, &w.CreatedBy, &w.LastUpdatedBy, &w.CreatedAt, &w.LastUpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

func (r *WebhookRepository) Exists(ctx context.Context, id, tenantID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM webhooks WHERE id = ? AND tenant_id = ?)`, id, tenantID).Scan(&exists)
	return exists, err
}

func (r *WebhookRepository) ListByTenant(ctx context.Context, tenantID string) ([]*models.Webhook, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tenant_id, comment, secret, broken, created_by, last_updated_by, created_at, last_updated_at
		FROM webhooks WHERE tenant_id = ? ORDER BY created_at
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var webhooks []*models.Webhook
	for rows.Next() {
		w := &models.Webhook{}
		if err := rows.Scan(&w.ID, &w.TenantID, &w.Comment, &w.Secret, &w.Broken, &w.CreatedBy, &w.LastUpdatedBy, &w.CreatedAt, &w.LastUpdatedAt); err != nil {
			return nil, err
		}
		webhooks = append(webhooks, w)
	}
	return webhooks, rows.Err()
}

// ApplyPatchTx writes each present patch field, then stamps
// last_updated_at/by unconditionally. The caller owns the transaction,
// so no reader ever observes a field change without the stamp. Returns
// false when no row matched the id/tenant pairing, so an edit racing a
// delete surfaces as not found instead of quietly updating nothing.
func (r *WebhookRepository) ApplyPatchTx(tx *sql.Tx, id, tenantID string, patch models.WebhookPatch, actor string, now int64) (bool, error) {
	if patch.Comment != nil {
		if _, err := tx.Exec(`UPDATE webhooks SET comment = ? WHERE id = ? AND tenant_id = ?`,
			*patch.Comment, id, tenantID); err != nil {
			return false, err
		}
	}
	if patch.Broken != nil {
		if _, err := tx.Exec(`UPDATE webhooks SET broken = ? WHERE id = ? AND tenant_id = ?`,
			*patch.Broken, id, tenantID); err != nil {
			return false, err
		}
	}
	if patch.Secret != nil {
		if _, err := tx.Exec(`UPDATE webhooks SET secret = ? WHERE id = ? AND tenant_id = ?`,
			*patch.Secret, id, tenantID); err != nil {
			return false, err
		}
	}

	res, err := tx.Exec(`UPDATE webhooks SET last_updated_at = ?, last_updated_by = ? WHERE id = ? AND tenant_id = ?`,
		now, actor, id, tenantID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateSecret persists a rotated secret. Returns false when no row
// matched the id/tenant pairing.
func (r *WebhookRepository) UpdateSecret(ctx context.Context, id, tenantID, secret, actor string, now int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE webhooks SET secret = ?, last_updated_at = ?, last_updated_by = ? WHERE id = ? AND tenant_id = ?`,
		secret, now, actor, id, tenantID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete is idempotent; a missing id is a no-op. Routes go with the
// webhook via the store's ON DELETE CASCADE.
func (r *WebhookRepository) Delete(ctx context.Context, id, tenantID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM webhooks WHERE id = ? AND tenant_id = ?`, id, tenantID)
	return err
}
