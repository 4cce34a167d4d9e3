package domain

import "time"

// GuideSource identifies where a ranked result was retrieved from.
type GuideSource string

const (
	SourceExternal GuideSource = "external"
	SourceOffline  GuideSource = "offline"
	SourceCache    GuideSource = "cache"
)

// Guide is an immutable repair procedure record produced by a data source.
type Guide struct {
	ID           int         `json:"id"`
	Title        string      `json:"title"`
	Device       string      `json:"device"`
	Category     string      `json:"category"`
	Difficulty   string      `json:"difficulty"`
	Summary      string      `json:"summary"`
	URL          string      `json:"url,omitempty"`
	Tools        []string    `json:"tools,omitempty"`
	Parts        []string    `json:"parts,omitempty"`
	TimeRequired string      `json:"time_required,omitempty"`
	ImageURL     string      `json:"image_url,omitempty"`
	Steps        []GuideStep `json:"steps,omitempty"`
}

type GuideStep struct {
	Order int    `json:"order"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// SearchFilters narrows a guide search. Difficulty and category may arrive
// in Japanese; callers normalize them before matching.
type SearchFilters struct {
	DeviceType             string   `json:"device_type,omitempty"`
	DifficultyLevel        string   `json:"difficulty_level,omitempty"`
	Category               string   `json:"category,omitempty"`
	MaxTime                string   `json:"max_time,omitempty"`
	RequiredTools          []string `json:"required_tools,omitempty"`
	ExcludeTools           []string `json:"exclude_tools,omitempty"`
	Language               string   `json:"language,omitempty"`
	IncludeCommunityGuides bool     `json:"include_community_guides"`
	MinRating              float64  `json:"min_rating,omitempty"`
}

func DefaultFilters() SearchFilters {
	return SearchFilters{
		Language:               "en",
		IncludeCommunityGuides: true,
	}
}

// RepairGuideResult wraps one guide with ranking metadata. ConfidenceScore
// is always clamped to [0,1] and is a deterministic function of
// (guide, query, filters).
type RepairGuideResult struct {
	Guide                 Guide       `json:"guide"`
	Source                GuideSource `json:"source"`
	ConfidenceScore       float64     `json:"confidence_score"`
	LastUpdated           time.Time   `json:"last_updated"`
	DifficultyExplanation string      `json:"difficulty_explanation,omitempty"`
	EstimatedCost         string      `json:"estimated_cost,omitempty"`
	SuccessRate           float64     `json:"success_rate,omitempty"`
	RelatedGuides         []Guide     `json:"related_guides,omitempty"`
}
