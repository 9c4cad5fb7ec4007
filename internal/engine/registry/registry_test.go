package registry

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"gitroute/internal/pkg/errors"
	"gitroute/internal/platform/config"
)

const testSchema = `
	PRAGMA foreign_keys = ON;

	CREATE TABLE tenants (
		id TEXT PRIMARY KEY,
		registered_at INTEGER NOT NULL
	);

	CREATE TABLE webhooks (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id),
		comment TEXT NOT NULL DEFAULT '',
		secret TEXT NOT NULL,
		broken INTEGER NOT NULL DEFAULT 0,
		created_by TEXT NOT NULL,
		last_updated_by TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		last_updated_at INTEGER NOT NULL
	);

	CREATE TABLE routes (
		id TEXT PRIMARY KEY,
		webhook_id TEXT NOT NULL REFERENCES webhooks(id) ON DELETE CASCADE,
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

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	// A second connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return db
}

type fakeMessenger struct {
	mu          sync.Mutex
	unreachable bool
	sent        []string
}

func (m *fakeMessenger) SendPrivateMessage(ctx context.Context, userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unreachable {
		return errors.ErrUnreachable
	}
	m.sent = append(m.sent, text)
	return nil
}

func testConfig() config.RegistryConfig {
	return config.RegistryConfig{
		WebhookCap:   3,
		IDLength:     32,
		SecretLength: 128,
		ReceiverURL:  "https://hooks.test",
	}
}

func newTestService(t *testing.T) (*Service, *fakeMessenger, *sql.DB) {
	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })

	messenger := &fakeMessenger{}
	return NewService(db, testConfig(), messenger), messenger, db
}
