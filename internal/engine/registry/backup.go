package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"gitroute/internal/pkg/errors"
	"gitroute/internal/platform/models"
)

// Reconciliation reports what an import did. Failed entries were logged
// and skipped; re-submitting the same snapshot resumes them.
type Reconciliation struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Failed   int `json:"failed,omitempty"`
}

// ExportBackup serializes the webhook's routes into the versioned
// snapshot envelope.
func (s *Service) ExportBackup(ctx context.Context, webhookID, tenantID string) (*models.Snapshot, error) {
	if err := s.EnsureTenant(ctx, tenantID); err != nil {
		return nil, err
	}

	exists, err := s.webhooks.Exists(ctx, webhookID, tenantID)
	if err != nil {
		return nil, errors.Store("webhook lookup", err)
	}
	if !exists {
		return nil, fmt.Errorf("webhook %s: %w", webhookID, errors.ErrNotFound)
	}

	routes, err := s.routes.ListByWebhook(ctx, webhookID)
	if err != nil {
		return nil, errors.Store("route list", err)
	}

	snap := &models.Snapshot{Protocol: models.SnapshotProtocol, Routes: []models.SnapshotRoute{}}
	for _, route := range routes {
		events := route.Events
		if events == nil {
			events = []string{}
		}
		snap.Routes = append(snap.Routes, models.SnapshotRoute{
			RepoName:  route.RepoName,
			ChannelID: route.ChannelID,
			Events:    events,
		})
	}
	return snap, nil
}

// ImportBackup merges a snapshot into live state, entry by entry, keyed
// on (webhook_id, lower(repo_name)). Each upsert commits independently:
// a failure mid-batch leaves earlier entries applied and the whole
// operation safe to re-run. Importing an unchanged snapshot twice
// yields inserted=N then updated=N.
func (s *Service) ImportBackup(ctx context.Context, webhookID, tenantID, actor string, raw []byte) (*Reconciliation, error) {
	if err := s.EnsureTenant(ctx, tenantID); err != nil {
		return nil, err
	}

	exists, err := s.webhooks.Exists(ctx, webhookID, tenantID)
	if err != nil {
		return nil, errors.Store("webhook lookup", err)
	}
	if !exists {
		return nil, fmt.Errorf("webhook %s: %w", webhookID, errors.ErrNotFound)
	}

	snap, err := models.ParseSnapshot(raw)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, errors.ErrValidation)
	}

	result := &Reconciliation{}
	for _, entry := range snap.Routes {
		if entry.RepoName == "" {
			result.Failed++
			continue
		}

		now := time.Now().Unix()
		inserted, err := s.routes.Upsert(ctx, &models.Route{
			ID:            "rt_" + uuid.New().String(),
			WebhookID:     webhookID,
			TenantID:      tenantID,
			RepoName:      strings.ToLower(entry.RepoName),
			ChannelID:     entry.ChannelID,
			Events:        entry.Events,
			CreatedBy:     actor,
			LastUpdatedBy: actor,
			CreatedAt:     now,
			LastUpdatedAt: now,
		})
		if err != nil {
			log.Warn().Err(err).Str("webhook_id", webhookID).Str("repo_name", entry.RepoName).
				Msg("snapshot entry failed, continuing")
			result.Failed++
			continue
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}
	return result, nil
}
