package ports

import (
	"context"
	"time"

	"github.com/kmorita/repair-guide-engine/internal/core/domain"
)

// GuideSearchService is the engine's single inbound surface.
type GuideSearchService interface {
	SearchGuides(ctx context.Context, query string, filters *domain.SearchFilters, limit int, useCache bool) []domain.RepairGuideResult
	GuideDetails(ctx context.Context, guideID int, source domain.GuideSource, useCache bool) *domain.RepairGuideResult
	TrendingGuides(ctx context.Context, limit int) []domain.RepairGuideResult
	GuidesByDevice(ctx context.Context, deviceType, deviceModel, issueType string, filters *domain.SearchFilters, limit int) []domain.RepairGuideResult
}

// CatalogClient wraps the networked guide catalog. Failures surface as the
// closed fetch-error set in domain (timeout / unreachable / malformed).
type CatalogClient interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Guide, error)
	Guide(ctx context.Context, guideID int) (*domain.Guide, error)
	Trending(ctx context.Context, limit int) ([]domain.Guide, error)
}

// OfflineCatalog is the local curated guide set. It never fails.
type OfflineCatalog interface {
	Search(ctx context.Context, query string, filters domain.SearchFilters, limit int) []domain.Guide
	Guide(ctx context.Context, guideID int) *domain.Guide
}

// Cache memoizes serialized search results under fixed-length derived keys.
// Key derivation belongs to the cache so every caller agrees on the shape.
type Cache interface {
	Key(parts ...string) string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// RateLimiter bounds outbound catalog calls. Allow and Record are separate
// calls; the window may be exceeded by a small margin under concurrency.
type RateLimiter interface {
	Allow() bool
	Record()
	TimeUntilNext() time.Duration
	Remaining() int
}

// SearchEventPublisher emits search-performed events for offline analysis.
type SearchEventPublisher interface {
	PublishSearchPerformed(ctx context.Context, event domain.SearchEvent) error
}

// SearchEventStore persists consumed search events.
type SearchEventStore interface {
	Record(ctx context.Context, event domain.SearchEvent) error
	TopQueries(ctx context.Context, since time.Time, limit int) ([]domain.QueryCount, error)
}
