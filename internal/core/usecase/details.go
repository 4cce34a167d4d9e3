package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kmorita/repair-guide-engine/internal/core/domain"
)

var popularQueries = []string{"iPhone screen", "Nintendo Switch", "laptop battery", "headphones"}

// GuideDetails fetches one guide directly. A direct fetch carries full
// confidence; a nil return means the guide exists in no source.
func (o *SearchOrchestrator) GuideDetails(ctx context.Context, guideID int, source domain.GuideSource, useCache bool) *domain.RepairGuideResult {
	if source == "" {
		source = domain.SourceExternal
	}
	key := o.cache.Key("guide_details", string(source), strconv.Itoa(guideID))

	if useCache {
		if raw, err := o.cache.Get(ctx, key); err == nil {
			var result domain.RepairGuideResult
			if json.Unmarshal(raw, &result) == nil {
				return &result
			}
			o.cache.Delete(ctx, key)
		}
	}

	var guide *domain.Guide
	if source == domain.SourceExternal && o.limiter.Allow() {
		fetched, err := o.catalog.Guide(ctx, guideID)
		if err != nil {
			o.logFetchFailure("catalog guide", err)
		} else {
			o.limiter.Record()
			guide = fetched
		}
	}
	if guide == nil {
		guide = o.offline.Guide(ctx, guideID)
		source = domain.SourceOffline
	}
	if guide == nil {
		o.logger.Warn("guide not found in any source", slog.Int("guide_id", guideID))
		return nil
	}

	result := domain.RepairGuideResult{
		Guide:                 *guide,
		Source:                source,
		ConfidenceScore:       1.0,
		LastUpdated:           o.now(),
		DifficultyExplanation: explainDifficulty(guide.Difficulty),
		EstimatedCost:         estimateRepairCost(*guide),
		SuccessRate:           estimateSuccessRate(*guide),
	}

	single := []domain.RepairGuideResult{result}
	o.attachRelatedGuides(ctx, single, 0)
	result = single[0]

	if useCache {
		if raw, err := json.Marshal(result); err == nil {
			o.cache.Set(ctx, key, raw, o.cacheTTL)
		}
	}
	return &result
}

// TrendingGuides serves the catalog's trending list, topped up with popular
// searches when the live list is short. Cached with a short TTL since
// trending data goes stale quickly.
func (o *SearchOrchestrator) TrendingGuides(ctx context.Context, limit int) []domain.RepairGuideResult {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	key := o.cache.Key("trending", strconv.Itoa(limit))

	if cached, ok := o.cachedResults(ctx, key); ok {
		return cached
	}

	var results []domain.RepairGuideResult
	if o.limiter.Allow() {
		guides, err := o.catalog.Trending(ctx, limit)
		if err != nil {
			o.logFetchFailure("catalog trending", err)
		} else {
			o.limiter.Record()
			for _, guide := range guides {
				results = append(results, domain.RepairGuideResult{
					Guide:                 guide,
					Source:                domain.SourceExternal,
					ConfidenceScore:       0.9,
					LastUpdated:           o.now(),
					DifficultyExplanation: explainDifficulty(guide.Difficulty),
				})
			}
		}
	}

	for _, query := range popularQueries {
		if len(results) >= limit {
			break
		}
		extra := o.search(ctx, query, nil, 2, true, 1)
		if len(extra) > 2 {
			extra = extra[:2]
		}
		results = append(results, extra...)
	}
	if len(results) > limit {
		results = results[:limit]
	}

	if len(results) > 0 {
		o.storeResults(ctx, key, results, o.trendingTTL)
	}
	if results == nil {
		results = []domain.RepairGuideResult{}
	}
	return results
}

// GuidesByDevice is a convenience search pinned to one device.
func (o *SearchOrchestrator) GuidesByDevice(ctx context.Context, deviceType, deviceModel, issueType string, filters *domain.SearchFilters, limit int) []domain.RepairGuideResult {
	parts := []string{deviceType}
	if deviceModel != "" {
		parts = append(parts, deviceModel)
	}
	if issueType != "" {
		parts = append(parts, issueType)
	}
	if limit <= 0 {
		limit = 20
	}

	effective := domain.DefaultFilters()
	if filters != nil {
		effective = *filters
	}
	effective.DeviceType = deviceType

	return o.SearchGuides(ctx, strings.Join(parts, " "), &effective, limit, true)
}

// Stats exposes operational state for the stats endpoint.
type Stats struct {
	CachePrimaryAvailable bool `json:"cache_primary_available"`
	CacheFallbackSize     int  `json:"cache_fallback_size"`
	RateLimitRemaining    int  `json:"rate_limit_remaining"`
	RateLimitResetSeconds int  `json:"rate_limit_reset_seconds"`
}

func (o *SearchOrchestrator) Stats() Stats {
	stats := Stats{
		RateLimitRemaining:    o.limiter.Remaining(),
		RateLimitResetSeconds: int(o.limiter.TimeUntilNext().Seconds()),
	}
	if inspector, ok := o.cache.(interface {
		PrimaryAvailable() bool
		FallbackSize() int
	}); ok {
		stats.CachePrimaryAvailable = inspector.PrimaryAvailable()
		stats.CacheFallbackSize = inspector.FallbackSize()
	}
	return stats
}
