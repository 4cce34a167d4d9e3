package usecase

import (
	"fmt"
	"strings"

	"github.com/kmorita/repair-guide-engine/internal/core/domain"
)

var difficultyExplanations = map[string]string{
	"easy":           "Can be completed by beginners with basic tools. Low risk of damage.",
	"moderate":       "Requires some technical knowledge and specialized tools. Moderate risk.",
	"difficult":      "Advanced repair requiring significant expertise and specialized equipment. High risk of damage if done incorrectly.",
	"very difficult": "Expert-level repair. Consider professional service unless you have extensive experience.",
}

func explainDifficulty(difficulty string) string {
	if explanation, ok := difficultyExplanations[strings.ToLower(difficulty)]; ok {
		return explanation
	}
	return fmt.Sprintf("Difficulty level: %s", difficulty)
}

// estimateRepairCost derives a rough cost band from difficulty and the
// number of parts the guide calls for.
func estimateRepairCost(guide domain.Guide) string {
	base := 10
	switch strings.ToLower(guide.Difficulty) {
	case "easy":
		base += 20
	case "moderate":
		base += 50
	case "difficult":
		base += 100
	default:
		base += 200
	}

	total := base + len(guide.Parts)*15
	return fmt.Sprintf("$%d-$%d", total/2, total*2)
}

func estimateSuccessRate(guide domain.Guide) float64 {
	rate := 0.4
	switch strings.ToLower(guide.Difficulty) {
	case "easy":
		rate = 0.9
	case "moderate":
		rate = 0.75
	case "difficult":
		rate = 0.6
	}

	if len(guide.Tools) > 0 && len(guide.Parts) > 0 {
		rate += 0.1
	}
	if guide.ImageURL != "" {
		rate += 0.05
	}

	if rate > 0.95 {
		rate = 0.95
	}
	return rate
}
