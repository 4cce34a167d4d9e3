package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newDegradedStore() *Store {
	// Empty URL keeps the store on the in-process fallback.
	return NewStore("", slog.New(slog.DiscardHandler))
}

func TestRoundTrip(t *testing.T) {
	store := newDegradedStore()
	ctx := context.Background()

	store.Set(ctx, "k1", []byte("value"), time.Minute)
	got, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("expected hit, got %v", err)
	}
	if string(got) != "value" {
		t.Fatalf("expected value, got %q", got)
	}
}

func TestMissAfterTTL(t *testing.T) {
	store := newDegradedStore()
	ctx := context.Background()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.fallback.now = func() time.Time { return current }

	store.Set(ctx, "k1", []byte("value"), time.Minute)
	current = current.Add(2 * time.Minute)

	if _, err := store.Get(ctx, "k1"); err != ErrCacheMiss {
		t.Fatalf("expected ErrCacheMiss after TTL, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := newDegradedStore()
	ctx := context.Background()

	store.Set(ctx, "k1", []byte("value"), time.Minute)
	store.Delete(ctx, "k1")
	if _, err := store.Get(ctx, "k1"); err != ErrCacheMiss {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestFallbackEvictsOldest(t *testing.T) {
	store := &Store{
		fallback: newMemoryStore(10),
		logger:   slog.New(slog.DiscardHandler),
	}
	ctx := context.Background()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.fallback.now = func() time.Time { return current }

	for i := 0; i < 11; i++ {
		store.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Hour)
		current = current.Add(time.Second)
	}

	if size := store.FallbackSize(); size != 10 {
		t.Fatalf("expected 10 entries after eviction, got %d", size)
	}
	// k0 was the oldest insertion.
	if _, err := store.Get(ctx, "k0"); err != ErrCacheMiss {
		t.Fatalf("expected oldest entry evicted, got %v", err)
	}
	if _, err := store.Get(ctx, "k10"); err != nil {
		t.Fatalf("expected newest entry retained, got %v", err)
	}
}

func TestKeyIsFixedLengthAndCollisionFree(t *testing.T) {
	longA := strings.Repeat("スイッチ画面修理 ", 20)
	longB := strings.Repeat("スイッチ画面修理 ", 20) + "x"

	keyA := Key(longA, "fingerprint", "10")
	keyB := Key(longB, "fingerprint", "10")

	if len(keyA) != 64 || len(keyB) != 64 {
		t.Fatalf("expected 64-hex-char keys, got %d and %d", len(keyA), len(keyB))
	}
	if keyA == keyB {
		t.Fatalf("distinct identifiers must derive distinct keys")
	}
	if keyA != Key(longA, "fingerprint", "10") {
		t.Fatalf("key derivation must be stable")
	}
}
