package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRequestsMigrationContainsDedupIndex(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_requests.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no requests migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE request_type AS ENUM ('INFO', 'ORDER')",
		"CREATE TYPE request_status AS ENUM ('PENDING', 'TREATED')",
		"CREATE TABLE requests",
		"CREATE UNIQUE INDEX ux_requests_store_offer_type ON requests (store_id, offer_id, type)",
		"status request_status NOT NULL DEFAULT 'PENDING'",
		"DROP TABLE requests",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationContainsDLQ(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_outbox.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no outbox migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE outbox_events",
		"CREATE TABLE outbox_dlq",
		"CREATE INDEX idx_outbox_events_unpublished",
		"CREATE UNIQUE INDEX ux_outbox_events_event_aggregate",
		"error_reason outbox_dlq_error_reason_enum NOT NULL",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
