package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LISTEN_ADDR", "STORE_DRIVER", "TOKEN_TTL", "CORS_ORIGINS", "BOOKLET_AUTHOR_FALLBACK"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.ListenAddr)
	}
	if cfg.StoreDriver != StoreSQLite {
		t.Fatalf("expected sqlite driver, got %q", cfg.StoreDriver)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h token ttl, got %s", cfg.TokenTTL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
	if cfg.BookletAuthorFallback != "Artist Unknown" {
		t.Fatalf("unexpected author fallback: %q", cfg.BookletAuthorFallback)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("STORE_DRIVER", "MONGO")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("expected :9000, got %q", cfg.ListenAddr)
	}
	if cfg.StoreDriver != StoreMongo {
		t.Fatalf("expected mongo driver, got %q", cfg.StoreDriver)
	}
	if cfg.TokenTTL != 90*time.Minute {
		t.Fatalf("expected 90m, got %s", cfg.TokenTTL)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadIgnoresInvalidDuration(t *testing.T) {
	t.Setenv("TOKEN_TTL", "forever")

	if got := Load().TokenTTL; got != 24*time.Hour {
		t.Fatalf("expected fallback 24h, got %s", got)
	}
}
