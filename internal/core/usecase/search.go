package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kmorita/repair-guide-engine/internal/core/domain"
	"github.com/kmorita/repair-guide-engine/internal/core/ports"
	"github.com/kmorita/repair-guide-engine/internal/normalize"
)

const (
	defaultSearchLimit = 10
	defaultFuzzy       = 0.7
	defaultCacheTTL    = 24 * time.Hour
	defaultTrendingTTL = time.Hour

	// Related-guide lookups reuse the search path one level deep. The
	// guard stops a related lookup from spawning its own related lookups.
	maxRelatedDepth = 1

	relatedGuidesKept = 2
	enrichedResults   = 3

	offlineStaleness = 30 * 24 * time.Hour
)

// SearchOrchestrator is the engine's single inbound surface: it owns query
// preprocessing, source selection, scoring, ranking and caching. It never
// returns an error to callers; every failure degrades to fewer results.
type SearchOrchestrator struct {
	catalog ports.CatalogClient
	offline ports.OfflineCatalog
	cache   ports.Cache
	limiter ports.RateLimiter
	devices *normalize.DeviceNormalizer
	logger  *slog.Logger

	fuzzyThreshold float64
	cacheTTL       time.Duration
	trendingTTL    time.Duration
	now            func() time.Time
}

type Options struct {
	FuzzyThreshold float64
	CacheTTL       time.Duration
	TrendingTTL    time.Duration
	Now            func() time.Time
}

func NewSearchOrchestrator(
	catalog ports.CatalogClient,
	offline ports.OfflineCatalog,
	cache ports.Cache,
	limiter ports.RateLimiter,
	logger *slog.Logger,
	options Options,
) *SearchOrchestrator {
	if options.FuzzyThreshold <= 0 || options.FuzzyThreshold > 1 {
		options.FuzzyThreshold = defaultFuzzy
	}
	if options.CacheTTL <= 0 {
		options.CacheTTL = defaultCacheTTL
	}
	if options.TrendingTTL <= 0 {
		options.TrendingTTL = defaultTrendingTTL
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	return &SearchOrchestrator{
		catalog:        catalog,
		offline:        offline,
		cache:          cache,
		limiter:        limiter,
		devices:        normalize.NewDeviceNormalizer(),
		logger:         logger,
		fuzzyThreshold: options.FuzzyThreshold,
		cacheTTL:       options.CacheTTL,
		trendingTTL:    options.TrendingTTL,
		now:            options.Now,
	}
}

var _ ports.GuideSearchService = (*SearchOrchestrator)(nil)

func (o *SearchOrchestrator) SearchGuides(ctx context.Context, query string, filters *domain.SearchFilters, limit int, useCache bool) []domain.RepairGuideResult {
	return o.search(ctx, query, filters, limit, useCache, 0)
}

func (o *SearchOrchestrator) search(ctx context.Context, query string, filters *domain.SearchFilters, limit int, useCache bool, depth int) []domain.RepairGuideResult {
	effective := domain.DefaultFilters()
	if filters != nil {
		effective = *filters
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	analysis := o.preprocessQuery(query)
	key := o.searchCacheKey(analysis.Processed, effective, limit)

	if useCache {
		if cached, ok := o.cachedResults(ctx, key); ok {
			o.logger.Info("search served from cache",
				slog.String("query", analysis.Processed),
				slog.Int("results", len(cached)))
			return cached
		}
	}

	var results []domain.RepairGuideResult
	if o.limiter.Allow() {
		results = o.searchExternal(ctx, analysis, effective, limit)
	} else {
		o.logger.Warn("catalog rate limit reached, skipping external search",
			slog.Duration("retry_in", o.limiter.TimeUntilNext()))
	}

	if len(results) < limit {
		results = append(results, o.searchOffline(ctx, analysis, effective, limit-len(results))...)
	}

	sortByConfidence(results)
	if len(results) > limit {
		results = results[:limit]
	}

	if depth < maxRelatedDepth {
		o.attachRelatedGuides(ctx, results, depth)
	}

	if useCache && len(results) > 0 {
		o.storeResults(ctx, key, results, o.cacheTTL)
	}

	o.logger.Info("search completed",
		slog.String("query", analysis.Processed),
		slog.Bool("japanese", analysis.Japanese),
		slog.Int("results", len(results)))

	if results == nil {
		results = []domain.RepairGuideResult{}
	}
	return results
}

func (o *SearchOrchestrator) searchExternal(ctx context.Context, analysis queryAnalysis, filters domain.SearchFilters, limit int) []domain.RepairGuideResult {
	// Over-fetch so local filtering still has enough candidates.
	guides, err := o.catalog.Search(ctx, analysis.Processed, limit*2)
	if err != nil {
		o.logFetchFailure("catalog search", err)
		return nil
	}
	o.limiter.Record()

	results := make([]domain.RepairGuideResult, 0, limit)
	for _, guide := range guides {
		if !guideMatchesFilters(guide, filters) {
			continue
		}
		results = append(results, domain.RepairGuideResult{
			Guide:                 guide,
			Source:                domain.SourceExternal,
			ConfidenceScore:       confidenceScore(guide, analysis, filters),
			LastUpdated:           o.now(),
			DifficultyExplanation: explainDifficulty(guide.Difficulty),
			EstimatedCost:         estimateRepairCost(guide),
		})
		if len(results) >= limit {
			break
		}
	}
	return results
}

func (o *SearchOrchestrator) searchOffline(ctx context.Context, analysis queryAnalysis, filters domain.SearchFilters, remaining int) []domain.RepairGuideResult {
	guides := o.offline.Search(ctx, analysis.Processed, filters, remaining)
	if len(guides) == 0 {
		return nil
	}

	results := make([]domain.RepairGuideResult, 0, len(guides))
	for _, guide := range guides {
		results = append(results, domain.RepairGuideResult{
			Guide:  guide,
			Source: domain.SourceOffline,
			// Curated data is trusted less than a live source.
			ConfidenceScore:       confidenceScore(guide, analysis, filters) * 0.8,
			LastUpdated:           o.now().Add(-offlineStaleness),
			DifficultyExplanation: explainDifficulty(guide.Difficulty),
		})
	}
	o.logger.Info("offline catalog filled shortfall", slog.Int("guides", len(results)))
	return results
}

// guideMatchesFilters applies the caller's narrowing locally, since the
// external catalog does not understand these filters. Difficulty compares
// canonical forms and accepts same-group neighbors.
func guideMatchesFilters(guide domain.Guide, filters domain.SearchFilters) bool {
	if filters.DifficultyLevel != "" {
		want := strings.ToLower(normalize.Difficulty(filters.DifficultyLevel))
		got := strings.ToLower(normalize.Difficulty(guide.Difficulty))
		if got != want && !sameDifficultyGroup(got, want) {
			return false
		}
	}

	if filters.DeviceType != "" && !strings.Contains(strings.ToLower(guide.Device), strings.ToLower(filters.DeviceType)) {
		return false
	}

	if filters.Category != "" {
		want := strings.ToLower(normalize.Category(filters.Category))
		if !strings.Contains(strings.ToLower(guide.Category), want) {
			return false
		}
	}

	if len(filters.RequiredTools) > 0 {
		for _, required := range filters.RequiredTools {
			if !anyToolContains(guide.Tools, required) {
				return false
			}
		}
	}
	if len(filters.ExcludeTools) > 0 {
		for _, excluded := range filters.ExcludeTools {
			if anyToolContains(guide.Tools, excluded) {
				return false
			}
		}
	}

	return true
}

func anyToolContains(tools []string, needle string) bool {
	needle = strings.ToLower(needle)
	for _, tool := range tools {
		if strings.Contains(strings.ToLower(tool), needle) {
			return true
		}
	}
	return false
}

// sortByConfidence orders results best-first. Equal scores fall back to
// guide ID so identical inputs always produce the identical ordering.
func sortByConfidence(results []domain.RepairGuideResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].ConfidenceScore != results[j].ConfidenceScore {
			return results[i].ConfidenceScore > results[j].ConfidenceScore
		}
		return results[i].Guide.ID < results[j].Guide.ID
	})
}

func (o *SearchOrchestrator) attachRelatedGuides(ctx context.Context, results []domain.RepairGuideResult, depth int) {
	top := results
	if len(top) > enrichedResults {
		top = top[:enrichedResults]
	}
	for i := range top {
		device := top[i].Guide.Device
		if device == "" {
			continue
		}

		candidates := o.search(ctx, device, nil, enrichedResults, true, depth+1)
		related := make([]domain.Guide, 0, relatedGuidesKept)
		for _, candidate := range candidates {
			if candidate.Guide.ID == top[i].Guide.ID {
				continue
			}
			related = append(related, candidate.Guide)
			if len(related) >= relatedGuidesKept {
				break
			}
		}
		if len(related) > 0 {
			top[i].RelatedGuides = related
		}
	}
}

func (o *SearchOrchestrator) searchCacheKey(processedQuery string, filters domain.SearchFilters, limit int) string {
	fingerprint := filters.DeviceType + "_" + filters.DifficultyLevel + "_" + filters.Category
	return o.cache.Key("search", processedQuery, fingerprint, strconv.Itoa(limit))
}

func (o *SearchOrchestrator) cachedResults(ctx context.Context, key string) ([]domain.RepairGuideResult, bool) {
	raw, err := o.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var results []domain.RepairGuideResult
	if err := json.Unmarshal(raw, &results); err != nil {
		o.logger.Warn("discarding undecodable cache entry", slog.String("error", err.Error()))
		o.cache.Delete(ctx, key)
		return nil, false
	}
	return results, true
}

func (o *SearchOrchestrator) storeResults(ctx context.Context, key string, results []domain.RepairGuideResult, ttl time.Duration) {
	raw, err := json.Marshal(results)
	if err != nil {
		o.logger.Warn("skip caching unserializable results", slog.String("error", err.Error()))
		return
	}
	o.cache.Set(ctx, key, raw, ttl)
}

func (o *SearchOrchestrator) logFetchFailure(operation string, err error) {
	switch {
	case domain.IsKind(err, domain.ErrSourceTimeout), domain.IsKind(err, domain.ErrSourceUnreachable):
		o.logger.Error("external catalog connection failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
	case domain.IsKind(err, domain.ErrMalformedData):
		o.logger.Error("external catalog returned invalid response",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
	default:
		o.logger.Error("external catalog failed unexpectedly",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
	}
}
