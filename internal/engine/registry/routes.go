package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gitroute/internal/pkg/errors"
	"gitroute/internal/platform/models"
	"gitroute/internal/platform/repositories"
)

// NormalizeRepoName folds owner and name into the registry's canonical
// route key.
func NormalizeRepoName(owner, name string) string {
	return strings.ToLower(owner + "/" + name)
}

// ParseEvents splits textual event input on spaces. Comma input is
// rejected outright rather than guessed at.
func ParseEvents(eventsText string) ([]string, error) {
	if strings.Contains(eventsText, ",") {
		return nil, fmt.Errorf("event names are separated by spaces, not commas: %w", errors.ErrValidation)
	}

	var events []string
	for _, tok := range strings.Split(eventsText, " ") {
		if tok == "" {
			continue
		}
		events = append(events, tok)
	}
	return events, nil
}

// CreateRoute maps a repository to a destination channel under the
// webhook. The normalized name must be unique within the webhook; the
// pre-check gives a friendly answer and the store's unique index
// settles races.
func (s *Service) CreateRoute(ctx context.Context, webhookID, tenantID, actor, owner, name, channelID string) (string, error) {
	if err := s.EnsureTenant(ctx, tenantID); err != nil {
		return "", err
	}

	exists, err := s.webhooks.Exists(ctx, webhookID, tenantID)
	if err != nil {
		return "", errors.Store("webhook lookup", err)
	}
	if !exists {
		return "", fmt.Errorf("webhook %s: %w", webhookID, errors.ErrNotFound)
	}

	repoName := NormalizeRepoName(owner, name)

	taken, err := s.routes.ExistsByName(ctx, webhookID, repoName)
	if err != nil {
		return "", errors.Store("route lookup", err)
	}
	if taken {
		return "", fmt.Errorf("a route for %s already exists on this webhook: %w", repoName, errors.ErrConflict)
	}

	now := time.Now().Unix()
	route := &models.Route{
		ID:            "rt_" + uuid.New().String(),
		WebhookID:     webhookID,
		TenantID:      tenantID,
		RepoName:      repoName,
		ChannelID:     channelID,
		Events:        nil,
		CreatedBy:     actor,
		LastUpdatedBy: actor,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}

	if err := s.routes.Create(ctx, route); err != nil {
		if repositories.IsUniqueViolation(err) {
			return "", fmt.Errorf("a route for %s already exists on this webhook: %w", repoName, errors.ErrConflict)
		}
		return "", errors.Store("route insert", err)
	}
	return route.ID, nil
}

// DeleteRoute is idempotent; an unknown id is a no-op.
func (s *Service) DeleteRoute(ctx context.Context, id, tenantID string) error {
	if err := s.EnsureTenant(ctx, tenantID); err != nil {
		return err
	}
	if err := s.routes.Delete(ctx, id, tenantID); err != nil {
		return errors.Store("route delete", err)
	}
	return nil
}

func (s *Service) SetRouteChannel(ctx context.Context, id, tenantID, actor, channelID string) error {
	if err := s.EnsureTenant(ctx, tenantID); err != nil {
		return err
	}

	updated, err := s.routes.UpdateChannel(ctx, id, tenantID, channelID, actor, time.Now().Unix())
	if err != nil {
		return errors.Store("route channel update", err)
	}
	if !updated {
		return fmt.Errorf("route %s: %w", id, errors.ErrNotFound)
	}
	return nil
}

// SetRouteEvents replaces the whole whitelist with the space-split
// tokens of eventsText. This is a full replace, not a merge.
func (s *Service) SetRouteEvents(ctx context.Context, id, tenantID, actor, eventsText string) error {
	if err := s.EnsureTenant(ctx, tenantID); err != nil {
		return err
	}

	events, err := ParseEvents(eventsText)
	if err != nil {
		return err
	}

	updated, err := s.routes.UpdateEvents(ctx, id, tenantID, events, actor, time.Now().Unix())
	if err != nil {
		return errors.Store("route events update", err)
	}
	if !updated {
		return fmt.Errorf("route %s: %w", id, errors.ErrNotFound)
	}
	return nil
}

// ClearRouteEvents empties the whitelist, which means every event is
// permitted again.
func (s *Service) ClearRouteEvents(ctx context.Context, id, tenantID, actor string) error {
	if err := s.EnsureTenant(ctx, tenantID); err != nil {
		return err
	}

	updated, err := s.routes.UpdateEvents(ctx, id, tenantID, nil, actor, time.Now().Unix())
	if err != nil {
		return errors.Store("route events clear", err)
	}
	if !updated {
		return fmt.Errorf("route %s: %w", id, errors.ErrNotFound)
	}
	return nil
}
