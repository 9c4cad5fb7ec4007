package repositories

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"gitroute/internal/platform/models"
)

func setupRouteDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE routes (
		id TEXT PRIMARY KEY,
		webhook_id TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		repo_name TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		events TEXT NOT NULL DEFAULT '[]',
		created_by TEXT NOT NULL,
		last_updated_by TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		last_updated_at INTEGER NOT NULL
	);
	CREATE UNIQUE INDEX idx_routes_webhook_repo ON routes(webhook_id, lower(repo_name));
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return db
}

func testRoute(id, repoName string) *models.Route {
	return &models.Route{
		ID:            id,
		WebhookID:     "wh_1",
		TenantID:      "tenant-1",
		RepoName:      repoName,
		ChannelID:     "chan-1",
		CreatedBy:     "user-1",
		LastUpdatedBy: "user-1",
		CreatedAt:     1234567890,
		LastUpdatedAt: 1234567890,
	}
}

func TestIsUniqueViolation(t *testing.T) {
	repo := NewRouteRepository(setupRouteDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testRoute("rt_1", "acme/widgets")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := repo.Create(ctx, testRoute("rt_2", "ACME/Widgets"))
	if err == nil {
		t.Fatal("Expected the unique index to reject a case-variant duplicate")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("Expected IsUniqueViolation to match, got %v", err)
	}

	if IsUniqueViolation(sql.ErrNoRows) {
		t.Error("Expected IsUniqueViolation to be false for unrelated errors")
	}
}

func TestRouteRepositoryUpsert(t *testing.T) {
	repo := NewRouteRepository(setupRouteDB(t))
	ctx := context.Background()

	t.Run("inserts when absent", func(t *testing.T) {
		inserted, err := repo.Upsert(ctx, testRoute("rt_1", "acme/widgets"))
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		if !inserted {
			t.Error("Expected inserted=true")
		}
	})

	t.Run("updates case-variant match in place", func(t *testing.T) {
		route := testRoute("rt_2", "ACME/widgets")
		route.ChannelID = "chan-2"
		route.Events = []string{"push"}

		inserted, err := repo.Upsert(ctx, route)
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		if inserted {
			t.Error("Expected inserted=false for an existing name")
		}

		routes, err := repo.ListByWebhook(ctx, "wh_1")
		if err != nil {
			t.Fatalf("ListByWebhook failed: %v", err)
		}
		if len(routes) != 1 {
			t.Fatalf("Expected 1 route, got %d", len(routes))
		}
		if routes[0].ID != "rt_1" {
			t.Errorf("Expected original id rt_1 to survive, got %s", routes[0].ID)
		}
		if routes[0].ChannelID != "chan-2" {
			t.Errorf("Expected chan-2, got %s", routes[0].ChannelID)
		}
		if len(routes[0].Events) != 1 || routes[0].Events[0] != "push" {
			t.Errorf("Expected [push], got %v", routes[0].Events)
		}
	})
}
