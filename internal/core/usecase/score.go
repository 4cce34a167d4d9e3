package usecase

import (
	"strings"

	"github.com/kmorita/repair-guide-engine/internal/core/domain"
	"github.com/kmorita/repair-guide-engine/internal/normalize"
)

var difficultyGroups = [][]string{
	{"easy", "beginner"},
	{"moderate", "intermediate"},
	{"difficult", "expert", "very difficult"},
}

var popularDevices = []string{"iphone", "android", "switch", "macbook", "xbox", "playstation"}

// confidenceScore ranks one guide against a query. It is a pure function
// of its arguments: no clock, cache, or limiter state may leak in, so
// identical inputs always produce the identical float.
func confidenceScore(guide domain.Guide, query queryAnalysis, filters domain.SearchFilters) float64 {
	score := 0.5

	queryLower := strings.ToLower(query.Processed)
	titleLower := strings.ToLower(guide.Title)
	deviceLower := strings.ToLower(guide.Device)

	if queryLower != "" && strings.Contains(titleLower, queryLower) {
		score += 0.3
	} else if anyWordInTitle(queryLower, titleLower) {
		score += 0.2
	}

	if filters.DeviceType != "" && strings.Contains(deviceLower, strings.ToLower(filters.DeviceType)) {
		score += 0.2
	}

	mappedFilter := false
	if filters.DifficultyLevel != "" {
		filterDifficulty := normalize.Difficulty(filters.DifficultyLevel)
		if filterDifficulty != filters.DifficultyLevel {
			mappedFilter = true
		}
		guideDifficulty := strings.ToLower(normalize.Difficulty(guide.Difficulty))
		switch {
		case guideDifficulty == strings.ToLower(filterDifficulty):
			score += 0.1
		case sameDifficultyGroup(guideDifficulty, strings.ToLower(filterDifficulty)):
			score += 0.05
		}
	}

	if filters.Category != "" {
		filterCategory := normalize.Category(filters.Category)
		if filterCategory != filters.Category {
			mappedFilter = true
		}
		if strings.Contains(strings.ToLower(guide.Category), strings.ToLower(filterCategory)) {
			score += 0.15
		}
	}
	if query.Japanese && mappedFilter {
		score += 0.05
	}

	for _, device := range popularDevices {
		if strings.Contains(deviceLower, device) {
			score += 0.05
			break
		}
	}

	if len(guide.Tools) > 0 {
		score += 0.05
	}
	if len(guide.Parts) > 0 {
		score += 0.05
	}
	if guide.ImageURL != "" {
		score += 0.05
	}

	if query.Japanese {
		score *= 0.8 + 0.2*query.MappingQuality
		if score < 0.4 {
			score = 0.4
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}
	return score
}

func anyWordInTitle(queryLower, titleLower string) bool {
	for _, word := range strings.Fields(queryLower) {
		if strings.Contains(titleLower, word) {
			return true
		}
	}
	return false
}

func sameDifficultyGroup(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	for _, group := range difficultyGroups {
		inA, inB := false, false
		for _, member := range group {
			if member == a {
				inA = true
			}
			if member == b {
				inB = true
			}
		}
		if inA && inB {
			return true
		}
	}
	return false
}
