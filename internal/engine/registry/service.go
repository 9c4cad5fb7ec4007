package registry

import (
	"context"
	"database/sql"
	"time"

	"gitroute/internal/engine/notify"
	"gitroute/internal/pkg/errors"
	"gitroute/internal/platform/config"
	"gitroute/internal/platform/repositories"
)

// Service is the registry command layer: tenant bootstrap, webhook and
// route management, secret rotation, and snapshot reconciliation. It
// holds no state of its own; every command re-reads what it needs from
// the store.
type Service struct {
	cfg       config.RegistryConfig
	tenants   *repositories.TenantRepository
	webhooks  *repositories.WebhookRepository
	routes    *repositories.RouteRepository
	messenger notify.Messenger
}

func NewService(db *sql.DB, cfg config.RegistryConfig, messenger notify.Messenger) *Service {
	return &Service{
		cfg:       cfg,
		tenants:   repositories.NewTenantRepository(db),
		webhooks:  repositories.NewWebhookRepository(db),
		routes:    repositories.NewRouteRepository(db),
		messenger: messenger,
	}
}

// EnsureTenant registers the tenant if this is its first registry touch.
// Safe to call from every command; the insert-if-absent never surfaces
// a duplicate-key fault.
func (s *Service) EnsureTenant(ctx context.Context, tenantID string) error {
	if err := s.tenants.Ensure(ctx, tenantID, time.Now().Unix()); err != nil {
		return errors.Store("tenant ensure", err)
	}
	return nil
}
