package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/mattn/go-sqlite3"

	"gitroute/internal/platform/models"
)

type RouteRepository struct {
	db *sql.DB
}

func NewRouteRepository(db *sql.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// IsUniqueViolation reports whether err is the store's unique-index
// rejection. The unique index on (webhook_id, lower(repo_name)) is the
// authoritative duplicate guard; the service maps this to Conflict.
func IsUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrConstraint &&
			(serr.ExtendedCode == sqlite3.ErrConstraintUnique || serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
	}
	return false
}

func (r *RouteRepository) Create(ctx context.Context, route *models.Route) error {
	eventsJSON, err := json.Marshal(route.Events)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO routes (id, webhook_id, tenant_id, repo_name, channel_id, events, created_by, last_updated_by, created_at, last_updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, route.ID, route.WebhookID, route.TenantID, route.RepoName, route.ChannelID, string(eventsJSON),
		route.CreatedBy, route.LastUpdatedBy, route.CreatedAt, route.LastUpdatedAt)
	return err
}

func (r *RouteRepository) ExistsByName(ctx context.Context, webhookID, repoName string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM routes WHERE webhook_id = ? AND lower(repo_name) = lower(?))`,
		webhookID, repoName).Scan(&exists)
	return exists, err
}

func (r *RouteRepository) ListByWebhook(ctx context.Context, webhookID string) ([]*models.Route, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, webhook_id, tenant_id, repo_name, channel_id, events, created_by, last_updated_by, created_at, last_updated_at
		FROM routes WHERE webhook_id = ? ORDER BY repo_name
	`, webhookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*models.Route
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}

func (r *RouteRepository) Delete(ctx context.Context, id, tenantID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM routes WHERE id = ? AND tenant_id = ?`, id, tenantID)
	return err
}

func (r *RouteRepository) UpdateChannel(ctx context.Context, id, tenantID, channelID, actor string, now int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE routes SET channel_id = ?, last_updated_by = ?, last_updated_at = ? WHERE id = ? AND tenant_id = ?`,
		channelID, actor, now, id, tenantID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *RouteRepository) UpdateEvents(ctx context.Context, id, tenantID string, events []string, actor string, now int64) (bool, error) {
	eventsJSON, err := json.Marshal(events)
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE routes SET events = ?, last_updated_by = ?, last_updated_at = ? WHERE id = ? AND tenant_id = ?`,
		string(eventsJSON), actor, now, id, tenantID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Upsert writes a snapshot entry keyed on (webhook_id, lower(repo_name)).
// The UPDATE-first shape keeps the inserted/updated counts honest; a
// racing insert between the two statements lands on the unique index and
// resolves as an update, never a duplicate row.
func (r *RouteRepository) Upsert(ctx context.Context, route *models.Route) (inserted bool, err error) {
	eventsJSON, err := json.Marshal(route.Events)
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE routes SET channel_id = ?, events = ?, last_updated_by = ?, last_updated_at = ?
		WHERE webhook_id = ? AND lower(repo_name) = lower(?)
	`, route.ChannelID, string(eventsJSON), route.LastUpdatedBy, route.LastUpdatedAt, route.WebhookID, route.RepoName)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, err
	} else if n > 0 {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO routes (id, webhook_id, tenant_id, repo_name, channel_id, events, created_by, last_updated_by, created_at, last_updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (webhook_id, lower(repo_name)) DO UPDATE SET
			channel_id = excluded.channel_id,
			events = excluded.events,
			last_updated_by = excluded.last_updated_by,
			last_updated_at = excluded.last_updated_at
	`, route.ID, route.WebhookID, route.TenantID, route.RepoName, route.ChannelID, string(eventsJSON),
		route.CreatedBy, route.LastUpdatedBy, route.CreatedAt, route.LastUpdatedAt)
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanRoute(s interface {
	Scan(dest ...interface{}) error
}) (*models.Route, error) {
	var route models.Route
	var eventsRaw []byte

	err := s.Scan(
		&route.ID,
		&route.WebhookID,
		&route.TenantID,
		&route.RepoName,
		&route.ChannelID,
		&eventsRaw,
		&route.CreatedBy,
		&route.LastUpdatedBy,
		&route.CreatedAt,
		&route.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(eventsRaw) > 0 {
		json.Unmarshal(eventsRaw, &route.Events)
	}
	return &route, nil
}
