package config

import "testing"

func TestLoadSearchDefaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX_CALLS", "")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "")
	t.Setenv("SEARCH_FUZZY_THRESHOLD", "")
	t.Setenv("CACHE_TTL_SECONDS", "")
	t.Setenv("TRENDING_TTL_SECONDS", "")

	cfg := Load()
	if cfg.RateLimitMaxCalls != 100 {
		t.Fatalf("expected default rate limit ceiling 100, got %d", cfg.RateLimitMaxCalls)
	}
	if cfg.RateLimitWindowSeconds != 3600 {
		t.Fatalf("expected default window 3600s, got %d", cfg.RateLimitWindowSeconds)
	}
	if cfg.SearchFuzzyThreshold != 0.7 {
		t.Fatalf("expected default fuzzy threshold 0.7, got %f", cfg.SearchFuzzyThreshold)
	}
	if cfg.CacheTTLSeconds != 86400 {
		t.Fatalf("expected default cache ttl 86400s, got %d", cfg.CacheTTLSeconds)
	}
	if cfg.TrendingTTLSeconds != 3600 {
		t.Fatalf("expected default trending ttl 3600s, got %d", cfg.TrendingTTLSeconds)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("SEARCH_FUZZY_THRESHOLD", "0.85")
	t.Setenv("RATE_LIMIT_MAX_CALLS", "10")
	t.Setenv("NATS_SUBJECT", "search.events")

	cfg := Load()
	if cfg.SearchFuzzyThreshold != 0.85 {
		t.Fatalf("expected fuzzy threshold override, got %f", cfg.SearchFuzzyThreshold)
	}
	if cfg.RateLimitMaxCalls != 10 {
		t.Fatalf("expected rate limit override, got %d", cfg.RateLimitMaxCalls)
	}
	if cfg.NATSSubject != "search.events" {
		t.Fatalf("expected subject override, got %q", cfg.NATSSubject)
	}
}

func TestLoadFallbackOnMalformedNumbers(t *testing.T) {
	t.Setenv("SEARCH_FUZZY_THRESHOLD", "not-a-number")
	t.Setenv("API_RATE_LIMIT_RPS", "fifty")

	cfg := Load()
	if cfg.SearchFuzzyThreshold != 0.7 {
		t.Fatalf("malformed float should fall back, got %f", cfg.SearchFuzzyThreshold)
	}
	if cfg.APIRateLimitRPS != 50 {
		t.Fatalf("malformed int should fall back, got %d", cfg.APIRateLimitRPS)
	}
}
