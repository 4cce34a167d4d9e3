package usecase

import (
	"strings"

	"github.com/kmorita/repair-guide-engine/internal/normalize"
)

// queryAnalysis carries what preprocessing learned about a query. The
// scoring function consumes it so that score inputs stay value-only.
type queryAnalysis struct {
	Original  string
	Processed string
	Japanese  bool

	// MappingQuality is the share of device-like tokens in the original
	// query that mapped to a canonical device name. 1.0 when the query
	// contains no device-like tokens at all.
	MappingQuality float64
}

// QueryInsight is the externally visible slice of query preprocessing,
// reported back to API callers alongside results.
type QueryInsight struct {
	Processed      string
	Japanese       bool
	MappingQuality float64
}

func (o *SearchOrchestrator) AnalyzeQuery(query string) QueryInsight {
	analysis := o.preprocessQuery(query)
	return QueryInsight{
		Processed:      analysis.Processed,
		Japanese:       analysis.Japanese,
		MappingQuality: analysis.MappingQuality,
	}
}

// preprocessQuery rewrites recognizable device tokens to their canonical
// English names, exact match first, fuzzy second. Unrecognized tokens pass
// through unchanged so a degraded mapping never loses the user's words.
func (o *SearchOrchestrator) preprocessQuery(query string) queryAnalysis {
	analysis := queryAnalysis{
		Original:       query,
		Processed:      query,
		Japanese:       normalize.ContainsJapanese(query),
		MappingQuality: 1.0,
	}

	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return analysis
	}

	deviceLike := 0
	mapped := 0
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if o.devices.IsDeviceLike(token) {
			deviceLike++
		}

		if canonical, ok := o.devices.Normalize(token); ok {
			mapped++
			out = append(out, canonical)
			continue
		}
		if canonical, _, ok := o.devices.FuzzyMatch(token, o.fuzzyThreshold); ok {
			mapped++
			out = append(out, canonical)
			continue
		}
		out = append(out, token)
	}

	analysis.Processed = strings.Join(out, " ")
	if deviceLike > 0 {
		quality := float64(mapped) / float64(deviceLike)
		if quality > 1.0 {
			quality = 1.0
		}
		analysis.MappingQuality = quality
	}
	return analysis
}
