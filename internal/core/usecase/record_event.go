package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kmorita/repair-guide-engine/internal/core/domain"
	"github.com/kmorita/repair-guide-engine/internal/core/ports"
)

// SearchEventRecorder persists consumed search events. Malformed events are
// dropped without error; store failures propagate so the queue redelivers.
// The store is idempotent on request id, so redelivery is safe.
type SearchEventRecorder struct {
	store  ports.SearchEventStore
	logger *slog.Logger
	now    func() time.Time
}

func NewSearchEventRecorder(store ports.SearchEventStore, logger *slog.Logger) *SearchEventRecorder {
	return &SearchEventRecorder{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (rec *SearchEventRecorder) Handle(ctx context.Context, event domain.SearchEvent) error {
	if strings.TrimSpace(event.RequestID) == "" || strings.TrimSpace(event.Query) == "" {
		rec.logger.Warn("dropping malformed search event",
			"request_id", event.RequestID,
			"query", event.Query,
		)
		return nil
	}

	if event.ProcessedQuery == "" {
		event.ProcessedQuery = event.Query
	}
	if event.PerformedAt.IsZero() {
		event.PerformedAt = rec.now().UTC()
	}

	return rec.store.Record(ctx, event)
}
