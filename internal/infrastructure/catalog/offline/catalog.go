// Package offline serves a curated guide set from data compiled into the
// binary, so search keeps answering when the external catalog is down.
package offline

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kmorita/repair-guide-engine/internal/core/domain"
)

//go:embed guides.yaml
var embeddedGuides []byte

type guideFile struct {
	Guides []guideRecord `yaml:"guides"`
}

type guideRecord struct {
	ID           int          `yaml:"id"`
	Title        string       `yaml:"title"`
	Device       string       `yaml:"device"`
	Category     string       `yaml:"category"`
	Difficulty   string       `yaml:"difficulty"`
	TimeRequired string       `yaml:"time_required"`
	Summary      string       `yaml:"summary"`
	Tools        []string     `yaml:"tools"`
	Parts        []string     `yaml:"parts"`
	Steps        []stepRecord `yaml:"steps"`
}

type stepRecord struct {
	Order int    `yaml:"order"`
	Title string `yaml:"title"`
	Text  string `yaml:"text"`
}

type Catalog struct {
	guides []domain.Guide
	logger *slog.Logger
}

// New loads the embedded guide set. overridePath optionally points to a
// curator-maintained spreadsheet whose rows replace or extend the embedded
// guides; a missing or unreadable override is logged and skipped.
func New(overridePath string, logger *slog.Logger) (*Catalog, error) {
	var file guideFile
	if err := yaml.Unmarshal(embeddedGuides, &file); err != nil {
		return nil, fmt.Errorf("parse embedded guides: %w", err)
	}

	guides := make([]domain.Guide, 0, len(file.Guides))
	for _, record := range file.Guides {
		guides = append(guides, record.toGuide())
	}

	catalog := &Catalog{guides: guides, logger: logger}
	if overridePath != "" {
		if err := catalog.applyOverride(overridePath); err != nil {
			logger.Warn("offline catalog override skipped",
				slog.String("path", overridePath),
				slog.String("error", err.Error()))
		}
	}

	logger.Info("offline catalog loaded", slog.Int("guides", len(catalog.guides)))
	return catalog, nil
}

func (c *Catalog) Search(ctx context.Context, query string, filters domain.SearchFilters, limit int) []domain.Guide {
	if limit <= 0 {
		return nil
	}

	terms := strings.Fields(strings.ToLower(query))
	device := strings.ToLower(filters.DeviceType)

	var matched []domain.Guide
	for _, guide := range c.guides {
		searchable := strings.ToLower(guide.Title + " " + guide.Device + " " + guide.Category)
		if device != "" && !strings.Contains(searchable, device) {
			continue
		}
		if !anyTermMatches(searchable, terms) {
			continue
		}
		matched = append(matched, guide)
	}

	// Guides whose device field matches the filter rank ahead of guides
	// that only matched in title or category text.
	if device != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			iDevice := strings.Contains(strings.ToLower(matched[i].Device), device)
			jDevice := strings.Contains(strings.ToLower(matched[j].Device), device)
			return iDevice && !jDevice
		})
	}

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

func (c *Catalog) Guide(ctx context.Context, guideID int) *domain.Guide {
	for _, guide := range c.guides {
		if guide.ID == guideID {
			copied := guide
			return &copied
		}
	}
	return nil
}

// Devices lists every device the curated set covers, sorted.
func (c *Catalog) Devices() []string {
	seen := make(map[string]struct{})
	for _, guide := range c.guides {
		seen[guide.Device] = struct{}{}
	}
	devices := make([]string, 0, len(seen))
	for device := range seen {
		devices = append(devices, device)
	}
	sort.Strings(devices)
	return devices
}

func (c *Catalog) Size() int {
	return len(c.guides)
}

func anyTermMatches(searchable string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, term := range terms {
		if strings.Contains(searchable, term) {
			return true
		}
	}
	return false
}

func (r guideRecord) toGuide() domain.Guide {
	steps := make([]domain.GuideStep, 0, len(r.Steps))
	for _, step := range r.Steps {
		steps = append(steps, domain.GuideStep{
			Order: step.Order,
			Title: step.Title,
			Text:  step.Text,
		})
	}
	return domain.Guide{
		ID:           r.ID,
		Title:        r.Title,
		Device:       r.Device,
		Category:     r.Category,
		Difficulty:   r.Difficulty,
		Summary:      r.Summary,
		Tools:        r.Tools,
		Parts:        r.Parts,
		TimeRequired: r.TimeRequired,
		Steps:        steps,
	}
}
