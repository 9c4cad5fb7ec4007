package registry

import (
	"context"
	"database/sql"
	stderrors "errors"
	"path/filepath"
	"sync"
	"testing"

	"gitroute/internal/pkg/errors"
	"gitroute/internal/platform/config"
	"gitroute/internal/platform/database"
)

// setupFileDB opens a file-backed store through the production DSN so
// writers contend across real connections, the way they do in a running
// server. The shared in-memory fixture cannot exhibit write races.
func setupFileDB(t *testing.T) *sql.DB {
	db, err := database.Open(config.DatabaseConfig{
		Path:           filepath.Join(t.TempDir(), "registry.db"),
		MaxConnections: 4,
	})
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return db
}

func TestCreateWebhookConcurrentQuota(t *testing.T) {
	db := setupFileDB(t)
	svc := NewService(db, testConfig(), &fakeMessenger{})
	ctx := context.Background()

	const workers = 10
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateWebhook(ctx, "tenant-1", "user-1", "", false)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var created, refused int
	for err := range results {
		switch {
		case err == nil:
			created++
		case stderrors.Is(err, errors.ErrQuotaExceeded):
			refused++
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}
	if created != 3 || refused != 7 {
		t.Errorf("Expected 3 created and 7 refused, got %d created and %d refused", created, refused)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM webhooks WHERE tenant_id = ?", "tenant-1").Scan(&count); err != nil {
		t.Fatalf("Failed to count webhooks: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected the cap to hold at 3, got %d rows", count)
	}
}

func TestCreateRouteConcurrentSameName(t *testing.T) {
	db := setupFileDB(t)
	svc := NewService(db, testConfig(), &fakeMessenger{})
	ctx := context.Background()

	webhookID, err := svc.CreateWebhook(ctx, "tenant-1", "user-1", "", false)
	if err != nil {
		t.Fatalf("CreateWebhook failed: %v", err)
	}

	// Case variants of the same repository racing for one slot.
	owners := []string{"acme", "ACME", "Acme", "acME", "acme", "ACME", "Acme", "acme"}
	results := make(chan error, len(owners))
	var wg sync.WaitGroup
	for _, owner := range owners {
		wg.Add(1)
		go func(owner string) {
			defer wg.Done()
			_, err := svc.CreateRoute(ctx, webhookID, "tenant-1", "user-1", owner, "widgets", "chan-1")
			results <- err
		}(owner)
	}
	wg.Wait()
	close(results)

	var created, conflicts int
	for err := range results {
		switch {
		case err == nil:
			created++
		case stderrors.Is(err, errors.ErrConflict):
			conflicts++
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Errorf("Expected exactly 1 winner, got %d", created)
	}
	if conflicts != len(owners)-1 {
		t.Errorf("Expected %d conflicts, got %d", len(owners)-1, conflicts)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM routes WHERE webhook_id = ?", webhookID).Scan(&count); err != nil {
		t.Fatalf("Failed to count routes: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 route row, got %d", count)
	}
}

func TestImportBackupConcurrent(t *testing.T) {
	db := setupFileDB(t)
	svc := NewService(db, testConfig(), &fakeMessenger{})
	ctx := context.Background()

	webhookID, err := svc.CreateWebhook(ctx, "tenant-1", "user-1", "", false)
	if err != nil {
		t.Fatalf("CreateWebhook failed: %v", err)
	}

	snapshot := []byte(`{
		"protocol": 1,
		"routes": [
			{"repo_name": "acme/widgets", "channel_id": "chan-1", "events": []},
			{"repo_name": "ACME/Tools", "channel_id": "chan-2", "events": ["push"]}
		]
	}`)

	const workers = 8
	results := make(chan *Reconciliation, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.ImportBackup(ctx, webhookID, "tenant-1", "user-1", snapshot)
			if err != nil {
				t.Errorf("ImportBackup failed: %v", err)
				return
			}
			results <- result
		}()
	}
	wg.Wait()
	close(results)

	// Every import accounts for both entries, whether it won the insert
	// or landed as an update.
	for result := range results {
		if result.Inserted+result.Updated != 2 || result.Failed != 0 {
			t.Errorf("Expected 2 applied entries, got {%d %d %d}", result.Inserted, result.Updated, result.Failed)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM routes WHERE webhook_id = ?", webhookID).Scan(&count); err != nil {
		t.Fatalf("Failed to count routes: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 routes with no duplicates, got %d", count)
	}

	var distinct int
	if err := db.QueryRow("SELECT COUNT(DISTINCT lower(repo_name)) FROM routes WHERE webhook_id = ?", webhookID).Scan(&distinct); err != nil {
		t.Fatalf("Failed to count distinct names: %v", err)
	}
	if distinct != 2 {
		t.Errorf("Expected 2 distinct names, got %d", distinct)
	}
}
