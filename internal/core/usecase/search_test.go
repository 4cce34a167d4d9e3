package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/kmorita/repair-guide-engine/internal/core/domain"
)

type fakeCatalog struct {
	searchGuides   []domain.Guide
	searchErr      error
	searchCalls    int
	trendingGuides []domain.Guide
	trendingErr    error
	guides         map[int]domain.Guide
	guideErr       error
}

func (f *fakeCatalog) Search(_ context.Context, query string, limit int) ([]domain.Guide, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	guides := f.searchGuides
	if len(guides) > limit {
		guides = guides[:limit]
	}
	return guides, nil
}

func (f *fakeCatalog) Guide(_ context.Context, guideID int) (*domain.Guide, error) {
	if f.guideErr != nil {
		return nil, f.guideErr
	}
	if guide, ok := f.guides[guideID]; ok {
		return &guide, nil
	}
	return nil, domain.WrapError(domain.ErrGuideNotFound, "catalog guide", errors.New("missing"))
}

func (f *fakeCatalog) Trending(_ context.Context, limit int) ([]domain.Guide, error) {
	if f.trendingErr != nil {
		return nil, f.trendingErr
	}
	guides := f.trendingGuides
	if len(guides) > limit {
		guides = guides[:limit]
	}
	return guides, nil
}

type fakeOffline struct {
	guides []domain.Guide
}

func (f *fakeOffline) Search(_ context.Context, _ string, _ domain.SearchFilters, limit int) []domain.Guide {
	guides := f.guides
	if len(guides) > limit {
		guides = guides[:limit]
	}
	return guides
}

func (f *fakeOffline) Guide(_ context.Context, guideID int) *domain.Guide {
	for _, guide := range f.guides {
		if guide.ID == guideID {
			copied := guide
			return &copied
		}
	}
	return nil
}

type fakeCache struct {
	entries map[string][]byte
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Key(parts ...string) string {
	return strings.Join(parts, "|")
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	if value, ok := f.entries[key]; ok {
		return value, nil
	}
	return nil, errors.New("miss")
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	f.sets++
	f.entries[key] = value
}

func (f *fakeCache) Delete(_ context.Context, key string) {
	delete(f.entries, key)
}

type fakeLimiter struct {
	allow    bool
	recorded int
	wait     time.Duration
}

func (f *fakeLimiter) Allow() bool                  { return f.allow }
func (f *fakeLimiter) Record()                      { f.recorded++ }
func (f *fakeLimiter) TimeUntilNext() time.Duration { return f.wait }
func (f *fakeLimiter) Remaining() int {
	if f.allow {
		return 1
	}
	return 0
}

var fixedNow = time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

func newTestOrchestrator(catalog *fakeCatalog, offline *fakeOffline, cache *fakeCache, limiter *fakeLimiter) *SearchOrchestrator {
	return NewSearchOrchestrator(catalog, offline, cache, limiter, slog.New(slog.DiscardHandler), Options{
		Now: func() time.Time { return fixedNow },
	})
}

func switchGuide() domain.Guide {
	return domain.Guide{
		ID:         1,
		Title:      "Nintendo Switch Screen Repair",
		Device:     "Nintendo Switch",
		Category:   "Screen Repair",
		Difficulty: "Moderate",
		Tools:      []string{"Tri-point Y00 screwdriver"},
		Parts:      []string{"LCD assembly"},
		ImageURL:   "https://img.example/switch.jpg",
	}
}

func iphoneGuide() domain.Guide {
	return domain.Guide{
		ID:         2,
		Title:      "iPhone 15 Screen Replacement",
		Device:     "iPhone",
		Category:   "Screen Repair",
		Difficulty: "Difficult",
	}
}

func TestSearchRanksDeviceMatchedGuideFirst(t *testing.T) {
	catalog := &fakeCatalog{searchGuides: []domain.Guide{iphoneGuide(), switchGuide()}}
	orchestrator := newTestOrchestrator(catalog, &fakeOffline{}, newFakeCache(), &fakeLimiter{allow: true})

	results := orchestrator.SearchGuides(context.Background(), "スイッチ 画面修理", nil, 10, false)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Guide.ID != 1 {
		t.Fatalf("expected Switch guide ranked first, got %q", results[0].Guide.Title)
	}
	if results[0].ConfidenceScore < 0.7 {
		t.Fatalf("expected confidence >= 0.7 for device-matched guide, got %f", results[0].ConfidenceScore)
	}
	if results[0].ConfidenceScore <= results[1].ConfidenceScore {
		t.Fatalf("expected strict ranking, got %f vs %f", results[0].ConfidenceScore, results[1].ConfidenceScore)
	}
}

func TestSearchFallsBackToOfflineOnCatalogFailure(t *testing.T) {
	for _, kind := range []error{domain.ErrSourceTimeout, domain.ErrSourceUnreachable, domain.ErrMalformedData} {
		catalog := &fakeCatalog{searchErr: domain.WrapError(kind, "catalog search", errors.New("boom"))}
		offline := &fakeOffline{guides: []domain.Guide{switchGuide()}}
		orchestrator := newTestOrchestrator(catalog, offline, newFakeCache(), &fakeLimiter{allow: true})

		results := orchestrator.SearchGuides(context.Background(), "switch screen", nil, 5, false)
		if len(results) == 0 {
			t.Fatalf("kind %v: expected offline results", kind)
		}
		if results[0].Source != domain.SourceOffline {
			t.Fatalf("kind %v: expected offline source, got %s", kind, results[0].Source)
		}
	}
}

func TestSearchOfflineResultsAreDiscountedAndStale(t *testing.T) {
	catalog := &fakeCatalog{searchErr: domain.WrapError(domain.ErrSourceUnreachable, "catalog search", errors.New("down"))}
	offline := &fakeOffline{guides: []domain.Guide{switchGuide()}}
	orchestrator := newTestOrchestrator(catalog, offline, newFakeCache(), &fakeLimiter{allow: true})

	results := orchestrator.SearchGuides(context.Background(), "switch screen", nil, 5, false)
	if len(results) == 0 {
		t.Fatalf("expected offline results")
	}

	analysis := orchestrator.preprocessQuery("switch screen")
	full := confidenceScore(switchGuide(), analysis, domain.DefaultFilters())
	if got, want := results[0].ConfidenceScore, full*0.8; got != want {
		t.Fatalf("offline confidence = %f, want %f", got, want)
	}
	if got, want := results[0].LastUpdated, fixedNow.Add(-offlineStaleness); !got.Equal(want) {
		t.Fatalf("offline last_updated = %v, want %v", got, want)
	}
}

func TestSearchSkipsExternalWhenRateLimited(t *testing.T) {
	catalog := &fakeCatalog{searchGuides: []domain.Guide{switchGuide()}}
	offline := &fakeOffline{guides: []domain.Guide{iphoneGuide()}}
	orchestrator := newTestOrchestrator(catalog, offline, newFakeCache(), &fakeLimiter{allow: false, wait: time.Minute})

	results := orchestrator.SearchGuides(context.Background(), "screen", nil, 5, false)
	if catalog.searchCalls != 0 {
		t.Fatalf("external catalog should not be called when rate limited")
	}
	if len(results) == 0 || results[0].Source != domain.SourceOffline {
		t.Fatalf("expected offline results under rate limit, got %+v", results)
	}
}

func TestSearchServesFromCacheWithoutExternalCall(t *testing.T) {
	catalog := &fakeCatalog{searchGuides: []domain.Guide{switchGuide()}}
	cache := newFakeCache()
	limiter := &fakeLimiter{allow: true}
	orchestrator := newTestOrchestrator(catalog, &fakeOffline{}, cache, limiter)

	first := orchestrator.SearchGuides(context.Background(), "switch screen", nil, 5, true)
	if len(first) == 0 {
		t.Fatalf("expected results on first search")
	}
	if cache.sets == 0 {
		t.Fatalf("expected cache write after first search")
	}

	callsAfterFirst := catalog.searchCalls
	second := orchestrator.SearchGuides(context.Background(), "switch screen", nil, 5, true)
	if catalog.searchCalls != callsAfterFirst {
		t.Fatalf("cached search should not hit the catalog again")
	}
	if len(second) != len(first) {
		t.Fatalf("cached results differ: %d vs %d", len(second), len(first))
	}
	// The stored source field survives the cache round trip unchanged.
	if second[0].Source != first[0].Source {
		t.Fatalf("source changed across cache round trip")
	}
}

func TestSearchDropsUndecodableCacheEntry(t *testing.T) {
	catalog := &fakeCatalog{searchGuides: []domain.Guide{switchGuide()}}
	cache := newFakeCache()
	orchestrator := newTestOrchestrator(catalog, &fakeOffline{}, cache, &fakeLimiter{allow: true})

	key := orchestrator.searchCacheKey("switch screen", domain.DefaultFilters(), 5)
	cache.entries[key] = []byte("not json")

	results := orchestrator.SearchGuides(context.Background(), "switch screen", nil, 5, true)
	if len(results) == 0 {
		t.Fatalf("expected fresh results after cache decode failure")
	}
	if catalog.searchCalls == 0 {
		t.Fatalf("expected catalog call after discarding bad entry")
	}
}

func TestSearchDifficultyFilterAcceptsSameGroup(t *testing.T) {
	moderate := switchGuide() // Moderate
	hard := iphoneGuide()     // Difficult
	catalog := &fakeCatalog{searchGuides: []domain.Guide{moderate, hard}}
	orchestrator := newTestOrchestrator(catalog, &fakeOffline{}, newFakeCache(), &fakeLimiter{allow: true})

	filters := domain.DefaultFilters()
	filters.DifficultyLevel = "中級者" // intermediate, same group as moderate
	results := orchestrator.SearchGuides(context.Background(), "screen", &filters, 10, false)

	for _, result := range results {
		if result.Guide.ID == hard.ID {
			t.Fatalf("difficult guide should not pass an intermediate filter")
		}
	}
	found := false
	for _, result := range results {
		if result.Guide.ID == moderate.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("moderate guide should pass an intermediate filter via group similarity")
	}
}

func TestSearchToolFilters(t *testing.T) {
	guide := switchGuide()
	catalog := &fakeCatalog{searchGuides: []domain.Guide{guide}}
	orchestrator := newTestOrchestrator(catalog, &fakeOffline{}, newFakeCache(), &fakeLimiter{allow: true})

	required := domain.DefaultFilters()
	required.RequiredTools = []string{"tri-point"}
	if results := orchestrator.SearchGuides(context.Background(), "switch", &required, 5, false); len(results) == 0 {
		t.Fatalf("guide with matching tool should pass required-tool filter")
	}

	excluded := domain.DefaultFilters()
	excluded.ExcludeTools = []string{"screwdriver"}
	for _, result := range orchestrator.SearchGuides(context.Background(), "switch", &excluded, 5, false) {
		if result.Guide.ID == guide.ID {
			t.Fatalf("guide with excluded tool should be filtered out")
		}
	}
}

func TestSearchAttachesRelatedGuidesExcludingSelf(t *testing.T) {
	first := switchGuide()
	second := switchGuide()
	second.ID = 3
	second.Title = "Nintendo Switch Battery Replacement"
	third := switchGuide()
	third.ID = 4
	third.Title = "Nintendo Switch Fan Replacement"

	catalog := &fakeCatalog{searchGuides: []domain.Guide{first, second, third}}
	orchestrator := newTestOrchestrator(catalog, &fakeOffline{}, newFakeCache(), &fakeLimiter{allow: true})

	results := orchestrator.SearchGuides(context.Background(), "switch", nil, 5, false)
	if len(results) == 0 {
		t.Fatalf("expected results")
	}
	related := results[0].RelatedGuides
	if len(related) == 0 || len(related) > 2 {
		t.Fatalf("expected 1-2 related guides, got %d", len(related))
	}
	for _, guide := range related {
		if guide.ID == results[0].Guide.ID {
			t.Fatalf("related guides must exclude the guide itself")
		}
	}
}

func TestSearchNeverReturnsNil(t *testing.T) {
	catalog := &fakeCatalog{searchErr: domain.WrapError(domain.ErrSourceUnreachable, "catalog search", errors.New("down"))}
	orchestrator := newTestOrchestrator(catalog, &fakeOffline{}, newFakeCache(), &fakeLimiter{allow: true})

	results := orchestrator.SearchGuides(context.Background(), "nothing matches", nil, 5, false)
	if results == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestSearchCacheKeyVariesWithFilterFingerprint(t *testing.T) {
	orchestrator := newTestOrchestrator(&fakeCatalog{}, &fakeOffline{}, newFakeCache(), &fakeLimiter{})

	base := domain.DefaultFilters()
	narrowed := domain.DefaultFilters()
	narrowed.DeviceType = "iPhone"

	if orchestrator.searchCacheKey("q", base, 10) == orchestrator.searchCacheKey("q", narrowed, 10) {
		t.Fatalf("filter fingerprint must change the cache key")
	}
	if orchestrator.searchCacheKey("q", base, 10) == orchestrator.searchCacheKey("q", base, 20) {
		t.Fatalf("limit must change the cache key")
	}
}

func TestCachedResultsRoundTripPreservesScores(t *testing.T) {
	cache := newFakeCache()
	orchestrator := newTestOrchestrator(&fakeCatalog{}, &fakeOffline{}, cache, &fakeLimiter{})

	stored := []domain.RepairGuideResult{{
		Guide:           switchGuide(),
		Source:          domain.SourceExternal,
		ConfidenceScore: 0.85,
		LastUpdated:     fixedNow,
	}}
	raw, err := json.Marshal(stored)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	cache.entries["k"] = raw

	loaded, ok := orchestrator.cachedResults(context.Background(), "k")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if loaded[0].ConfidenceScore != 0.85 {
		t.Fatalf("confidence changed across round trip: %f", loaded[0].ConfidenceScore)
	}
}
