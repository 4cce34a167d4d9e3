package domain

import "time"

// SearchEvent describes one completed guide search; the API publishes these
// and the worker persists them.
type SearchEvent struct {
	RequestID        string    `json:"request_id"`
	Query            string    `json:"query"`
	ProcessedQuery   string    `json:"processed_query"`
	LanguageDetected string    `json:"language_detected"`
	ResultCount      int       `json:"result_count"`
	TopConfidence    float64   `json:"top_confidence"`
	DurationMillis   int64     `json:"duration_ms"`
	PerformedAt      time.Time `json:"performed_at"`
}

// QueryCount is an aggregated view over recorded search events.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}
