package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"gitroute/internal/pkg/errors"
	"gitroute/internal/platform/models"
	"gitroute/internal/platform/repositories"
)

// CreateWebhook registers a new webhook for the tenant and delivers the
// secret with setup instructions via the private-message channel. The
// secret is shown exactly once, in that message.
//
// If delivery fails the webhook row remains created and the returned
// error wraps ErrUnreachable; the id is still returned so the caller
// can rotate or delete the orphaned hook.
func (s *Service) CreateWebhook(ctx context.Context, tenantID, actor, comment string, broken bool) (string, error) {
	if err := s.EnsureTenant(ctx, tenantID); err != nil {
		return "", err
	}

	var id, secret string

	// Token space is large enough that collisions are theoretical; one
	// retry on the store's uniqueness rejection covers the rest.
	for attempt := 0; ; attempt++ {
		var err error
		id, err = Token(s.cfg.IDLength)
		if err != nil {
			return "", fmt.Errorf("generate webhook id: %w", err)
		}
		secret, err = Token(s.cfg.SecretLength)
		if err != nil {
			return "", fmt.Errorf("generate webhook secret: %w", err)
		}

		err = s.insertWebhook(ctx, tenantID, actor, id, secret, comment, broken)
		if err == nil {
			break
		}
		if repositories.IsUniqueViolation(err) && attempt == 0 {
			log.Warn().Str("tenant_id", tenantID).Msg("webhook id collision, regenerating")
			continue
		}
		return "", err
	}

	if err := s.messenger.SendPrivateMessage(ctx, actor, webhookInstructions(s.cfg.ReceiverURL, id, secret)); err != nil {
		log.Warn().Err(err).Str("webhook_id", id).Str("tenant_id", tenantID).
			Msg("webhook created but secret delivery failed")
		return id, fmt.Errorf("webhook %s created but the secret could not be delivered: %w", id, errors.ErrUnreachable)
	}

	return id, nil
}

// insertWebhook runs the quota check and the insert in one immediate
// transaction so two concurrent creates cannot both slip under the cap.
func (s *Service) insertWebhook(ctx context.Context, tenantID, actor, id, secret, comment string, broken bool) error {
	tx, err := s.webhooks.BeginTx(ctx)
	if err != nil {
		return errors.Store("webhook create", err)
	}
	defer tx.Rollback()

	count, err := s.webhooks.CountByTenantTx(tx, tenantID)
	if err != nil {
		return errors.Store("webhook count", err)
	}
	if count >= s.cfg.WebhookCap {
		return fmt.Errorf("tenant already has %d webhooks: %w", count, errors.ErrQuotaExceeded)
	}

	now := time.Now().Unix()
	err = s.webhooks.CreateTx(tx, &models.Webhook{
		ID:            id,
		TenantID:      tenantID,
		Comment:       comment,
		Secret:        secret,
		Broken:        broken,
		CreatedBy:     actor,
		LastUpdatedBy: actor,
		CreatedAt:     now,
		LastUpdatedAt: now,
	})
	if err != nil {
		if repositories.IsUniqueViolation(err) {
			return err
		}
		return errors.Store("webhook insert", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.Store("webhook create commit", err)
	}
	return nil
}

// EditWebhook applies the present patch fields and the update stamp in
// a single transaction; partial application across fields cannot be
// observed. The patch and the existence check share that transaction,
// so a webhook deleted mid-edit reports not found rather than success.
func (s *Service) EditWebhook(ctx context.Context, id, tenantID, actor string, patch models.WebhookPatch) error {
	if patch.Empty() {
		return fmt.Errorf("no fields to update: %w", errors.ErrValidation)
	}

	if err := s.EnsureTenant(ctx, tenantID); err != nil {
		return err
	}

	tx, err := s.webhooks.BeginTx(ctx)
	if err != nil {
		return errors.Store("webhook edit", err)
	}
	defer tx.Rollback()

	matched, err := s.webhooks.ApplyPatchTx(tx, id, tenantID, patch, actor, time.Now().Unix())
	if err != nil {
		return errors.Store("webhook edit", err)
	}
	if !matched {
		return fmt.Errorf("webhook %s: %w", id, errors.ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return errors.Store("webhook edit commit", err)
	}
	return nil
}

// ListWebhooks returns every webhook for the tenant with its routes
// nested. Secrets are never part of the view.
func (s *Service) ListWebhooks(ctx context.Context, tenantID string) ([]models.WebhookView, error) {
	if err := s.EnsureTenant(ctx, tenantID); err != nil {
		return nil, err
	}

	webhooks, err := s.webhooks.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, errors.Store("webhook list", err)
	}

	views := make([]models.WebhookView, 0, len(webhooks))
	for _, w := range webhooks {
		routes, err := s.routes.ListByWebhook(ctx, w.ID)
		if err != nil {
			return nil, errors.Store("route list", err)
		}

		routeViews := make([]models.RouteView, 0, len(routes))
		for _, route := range routes {
			routeViews = append(routeViews, models.RouteView{
				ID:        route.ID,
				RepoName:  route.RepoName,
				ChannelID: route.ChannelID,
				Events:    route.Events,
				AllEvents: len(route.Events) == 0,
			})
		}

		views = append(views, models.WebhookView{
			ID:            w.ID,
			Comment:       w.Comment,
			Broken:        w.Broken,
			ReceiverURL:   receiverURL(s.cfg.ReceiverURL, w.ID),
			CreatedBy:     w.CreatedBy,
			LastUpdatedBy: w.LastUpdatedBy,
			CreatedAt:     w.CreatedAt,
			LastUpdatedAt: w.LastUpdatedAt,
			Routes:        routeViews,
		})
	}
	return views, nil
}

// DeleteWebhook removes the webhook and, by cascade, its routes.
// Deleting an unknown id is a no-op.
func (s *Service) DeleteWebhook(ctx context.Context, id, tenantID string) error {
	if err := s.EnsureTenant(ctx, tenantID); err != nil {
		return err
	}
	if err := s.webhooks.Delete(ctx, id, tenantID); err != nil {
		return errors.Store("webhook delete", err)
	}
	return nil
}

// RotateSecret replaces only the secret, persisting before delivery.
// If delivery then fails, the rotation has already happened: the caller
// is locked out of the new secret until a further rotation succeeds.
// That hazard is inherent to persist-then-deliver and is reported, not
// hidden.
func (s *Service) RotateSecret(ctx context.Context, id, tenantID, actor string) error {
	if err := s.EnsureTenant(ctx, tenantID); err != nil {
		return err
	}

	secret, err := Token(s.cfg.SecretLength)
	if err != nil {
		return fmt.Errorf("generate webhook secret: %w", err)
	}

	updated, err := s.webhooks.UpdateSecret(ctx, id, tenantID, secret, actor, time.Now().Unix())
	if err != nil {
		return errors.Store("secret rotate", err)
	}
	if !updated {
		return fmt.Errorf("webhook %s: %w", id, errors.ErrNotFound)
	}

	if err := s.messenger.SendPrivateMessage(ctx, actor, rotationInstructions(secret)); err != nil {
		log.Warn().Err(err).Str("webhook_id", id).Str("tenant_id", tenantID).
			Msg("secret rotated but delivery failed")
		return fmt.Errorf("secret was rotated but could not be delivered; rotate again once your messages are open: %w", errors.ErrUnreachable)
	}
	return nil
}

func receiverURL(base, id string) string {
	return base + "/receiver?id=" + id
}

func webhookInstructions(base, id, secret string) string {
	return fmt.Sprintf(`Your webhook is ready.

Add this receiver to your repositories (or organizations): %s

Set the Secret field to %s and make sure the content type is application/json.

Use %s as the webhook ID when adding repositories.

This URL and secret are unique to you; the secret will not be shown again. Delete this message once you are set up.`,
		receiverURL(base, id), secret, id)
}

func rotationInstructions(secret string) string {
	return fmt.Sprintf(`Your new webhook secret is %s.

Update the webhook settings at the source forge now; events will be rejected until you do.

The secret will not be shown again. Delete this message once you are done.`, secret)
}
