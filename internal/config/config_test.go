package config

import "testing"

func TestLoadReadsListSettings(t *testing.T) {
	t.Setenv("CUSTOM_LIST_LIMIT", "7")
	t.Setenv("BULK_SEND_WORKERS", "4")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,,")

	cfg := Load()

	if cfg.CustomListLimit != 7 {
		t.Fatalf("expected custom list limit 7, got %d", cfg.CustomListLimit)
	}
	if cfg.BulkSendWorkers != 4 {
		t.Fatalf("expected 4 workers, got %d", cfg.BulkSendWorkers)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
}

func TestLoadFallsBackOnInvalidNumbers(t *testing.T) {
	t.Setenv("CUSTOM_LIST_LIMIT", "lots")
	t.Setenv("BULK_SEND_WORKERS", "-3")

	cfg := Load()

	if cfg.CustomListLimit != 50 {
		t.Fatalf("expected default limit 50, got %d", cfg.CustomListLimit)
	}
	if cfg.BulkSendWorkers != 1 {
		t.Fatalf("expected default of 1 worker, got %d", cfg.BulkSendWorkers)
	}
}
