package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kmorita/repair-guide-engine/internal/config"
	"github.com/kmorita/repair-guide-engine/internal/core/domain"
	"github.com/kmorita/repair-guide-engine/internal/core/ports"
	"github.com/kmorita/repair-guide-engine/internal/core/usecase"
	"github.com/kmorita/repair-guide-engine/internal/observability/metrics"
)

const (
	maxInFlightRequests = 256
	backpressureWait    = 100 * time.Millisecond
)

type Router struct {
	service   *usecase.SearchOrchestrator
	publisher ports.SearchEventPublisher
	metrics   *metrics.HTTPServerMetrics
	logger    *slog.Logger
	cfg       config.Config
}

// noopPublisher stands in when no event publisher is wired, so the search
// path never has to branch on a missing collaborator.
type noopPublisher struct{}

func (noopPublisher) PublishSearchPerformed(context.Context, domain.SearchEvent) error {
	return nil
}

func NewRouter(
	service *usecase.SearchOrchestrator,
	publisher ports.SearchEventPublisher,
	serverMetrics *metrics.HTTPServerMetrics,
	logger *slog.Logger,
	cfg config.Config,
) *Router {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &Router{
		service:   service,
		publisher: publisher,
		metrics:   serverMetrics,
		logger:    logger,
		cfg:       cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/guides/search", rt.searchGuides)
	mux.HandleFunc("/v1/guides/trending", rt.trendingGuides)
	mux.HandleFunc("/v1/guides/stats", rt.engineStats)
	mux.HandleFunc("/v1/guides/device/", rt.guidesByDevice)
	mux.HandleFunc("/v1/guides/", rt.guideDetails)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = backpressureMiddleware(handler, maxInFlightRequests, backpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type searchRequest struct {
	Query    string                `json:"query"`
	Filters  *domain.SearchFilters `json:"filters"`
	Limit    int                   `json:"limit"`
	UseCache *bool                 `json:"use_cache"`
}

type searchResponse struct {
	Results                []domain.RepairGuideResult `json:"results"`
	TotalResults           int                        `json:"total_results"`
	QueryProcessed         string                     `json:"query_processed"`
	LanguageDetected       string                     `json:"language_detected"`
	JapaneseMappingQuality float64                    `json:"japanese_mapping_quality"`
	ProcessingTimeMillis   int64                      `json:"processing_time_ms"`
}

func (rt *Router) searchGuides(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
	case http.MethodGet:
		req = searchRequestFromQuery(r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = rt.cfg.SearchDefaultLimit
	}
	useCache := true
	if req.UseCache != nil {
		useCache = *req.UseCache
	}

	start := time.Now()
	insight := rt.service.AnalyzeQuery(req.Query)
	results := rt.service.SearchGuides(r.Context(), req.Query, req.Filters, limit, useCache)
	duration := time.Since(start)

	language := "en"
	if insight.Japanese {
		language = "ja"
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Results:                results,
		TotalResults:           len(results),
		QueryProcessed:         insight.Processed,
		LanguageDetected:       language,
		JapaneseMappingQuality: insight.MappingQuality,
		ProcessingTimeMillis:   duration.Milliseconds(),
	})

	topConfidence := 0.0
	topSource := "none"
	if len(results) > 0 {
		topConfidence = results[0].ConfidenceScore
		topSource = string(results[0].Source)
	}
	if rt.metrics != nil {
		rt.metrics.RecordSearch("api", topSource, len(results), topConfidence, insight.Japanese, duration)
	}
	rt.publishSearchEvent(r.Context(), domain.SearchEvent{
		RequestID:        requestIDFromContext(r.Context()),
		Query:            req.Query,
		ProcessedQuery:   insight.Processed,
		LanguageDetected: language,
		ResultCount:      len(results),
		TopConfidence:    topConfidence,
		DurationMillis:   duration.Milliseconds(),
		PerformedAt:      time.Now().UTC(),
	})
}

// searchRequestFromQuery supports the query-parameter form of the search
// endpoint. Only the scalar filters are addressable this way.
func searchRequestFromQuery(r *http.Request) searchRequest {
	params := r.URL.Query()
	req := searchRequest{
		Query: params.Get("q"),
		Limit: queryInt(r, "limit", 0),
	}
	if req.Query == "" {
		req.Query = params.Get("query")
	}
	if params.Get("use_cache") == "false" {
		useCache := false
		req.UseCache = &useCache
	}
	deviceType := params.Get("device_type")
	difficulty := params.Get("difficulty")
	category := params.Get("category")
	if deviceType != "" || difficulty != "" || category != "" {
		filters := domain.DefaultFilters()
		filters.DeviceType = deviceType
		filters.DifficultyLevel = difficulty
		filters.Category = category
		req.Filters = &filters
	}
	return req
}

// publishSearchEvent runs after the response has been written. A publish
// failure never surfaces to the client.
func (rt *Router) publishSearchEvent(ctx context.Context, event domain.SearchEvent) {
	if err := rt.publisher.PublishSearchPerformed(context.WithoutCancel(ctx), event); err != nil {
		rt.logger.Warn("search event publish failed",
			"request_id", event.RequestID,
			"error", err,
		)
	}
}

func (rt *Router) guideDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rawID := strings.TrimPrefix(r.URL.Path, "/v1/guides/")
	guideID, err := strconv.Atoi(rawID)
	if err != nil || guideID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "guide id must be a positive integer"})
		return
	}

	source := domain.SourceExternal
	if r.URL.Query().Get("source") == string(domain.SourceOffline) {
		source = domain.SourceOffline
	}
	useCache := r.URL.Query().Get("use_cache") != "false"

	result := rt.service.GuideDetails(r.Context(), guideID, source, useCache)
	if result == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "guide not found"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) trendingGuides(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	limit := queryInt(r, "limit", 5)
	results := rt.service.TrendingGuides(r.Context(), limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"results":       results,
		"total_results": len(results),
	})
}

func (rt *Router) guidesByDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	device := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/guides/device/"), "/")
	if device == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "device type is required"})
		return
	}

	limit := queryInt(r, "limit", 20)
	results := rt.service.GuidesByDevice(
		r.Context(),
		device,
		r.URL.Query().Get("model"),
		r.URL.Query().Get("issue"),
		nil,
		limit,
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"device_type":   device,
		"results":       results,
		"total_results": len(results),
	})
}

func (rt *Router) engineStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, rt.service.Stats())
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
