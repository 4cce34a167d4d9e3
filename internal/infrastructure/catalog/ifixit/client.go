package ifixit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kmorita/repair-guide-engine/internal/core/domain"
	"github.com/kmorita/repair-guide-engine/internal/infrastructure/resilience"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
	logger     *slog.Logger
}

func New(baseURL, apiKey string, executor *resilience.Executor, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		executor:   executor,
		logger:     logger,
	}
}

// guideDocument mirrors the catalog's guide payload. Tools and parts arrive
// as objects with a text field, images as a map of size variants.
type guideDocument struct {
	GuideID      int            `json:"guideid"`
	Title        string         `json:"title"`
	URL          string         `json:"url"`
	Summary      string         `json:"summary"`
	Difficulty   string         `json:"difficulty"`
	Category     string         `json:"category"`
	Subject      string         `json:"subject"`
	TimeRequired string         `json:"time_required"`
	Tools        []labeledItem  `json:"tools"`
	Parts        []labeledItem  `json:"parts"`
	Image        *guideImage    `json:"image"`
	Steps        []stepDocument `json:"steps"`
}

type labeledItem struct {
	Text string `json:"text"`
}

type guideImage struct {
	Standard  string `json:"standard"`
	Thumbnail string `json:"thumbnail"`
}

type stepDocument struct {
	OrderBy int    `json:"orderby"`
	Title   string `json:"title"`
	Text    string `json:"text_rendered"`
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Guide, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	var docs []guideDocument
	err := c.executor.Execute(ctx, "catalog_search", func(ctx context.Context) error {
		return c.getGuideList(ctx, "/guides", params, &docs, "search")
	}, classifyCatalogError)
	if err != nil {
		return nil, mapFetchError("catalog search", err)
	}

	guides := make([]domain.Guide, 0, len(docs))
	needle := strings.ToLower(query)
	for _, doc := range docs {
		if !strings.Contains(strings.ToLower(doc.Title), needle) {
			continue
		}
		guides = append(guides, doc.toGuide())
		if len(guides) >= limit {
			break
		}
	}

	c.logger.Debug("catalog search completed",
		slog.String("query", query),
		slog.Int("fetched", len(docs)),
		slog.Int("matched", len(guides)))
	return guides, nil
}

func (c *Client) Guide(ctx context.Context, guideID int) (*domain.Guide, error) {
	var doc guideDocument
	err := c.executor.Execute(ctx, "catalog_guide", func(ctx context.Context) error {
		return c.getJSON(ctx, "/guides/"+strconv.Itoa(guideID), nil, &doc, "guide")
	}, classifyCatalogError)
	if err != nil {
		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, domain.WrapError(domain.ErrGuideNotFound, "catalog guide", err)
		}
		return nil, mapFetchError("catalog guide", err)
	}
	if doc.GuideID == 0 && doc.Title == "" {
		return nil, domain.WrapError(domain.ErrMalformedData, "catalog guide", fmt.Errorf("empty guide document for id %d", guideID))
	}

	guide := doc.toGuide()
	return &guide, nil
}

func (c *Client) Trending(ctx context.Context, limit int) ([]domain.Guide, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var docs []guideDocument
	err := c.executor.Execute(ctx, "catalog_trending", func(ctx context.Context) error {
		return c.getGuideList(ctx, "/guides/trending", params, &docs, "trending")
	}, classifyCatalogError)
	if err != nil {
		return nil, mapFetchError("catalog trending", err)
	}

	if len(docs) > limit {
		docs = docs[:limit]
	}
	guides := make([]domain.Guide, 0, len(docs))
	for _, doc := range docs {
		guides = append(guides, doc.toGuide())
	}
	return guides, nil
}

func (d guideDocument) toGuide() domain.Guide {
	tools := make([]string, 0, len(d.Tools))
	for _, tool := range d.Tools {
		if tool.Text != "" {
			tools = append(tools, tool.Text)
		}
	}
	parts := make([]string, 0, len(d.Parts))
	for _, part := range d.Parts {
		if part.Text != "" {
			parts = append(parts, part.Text)
		}
	}

	imageURL := ""
	if d.Image != nil {
		imageURL = d.Image.Standard
		if imageURL == "" {
			imageURL = d.Image.Thumbnail
		}
	}

	steps := make([]domain.GuideStep, 0, len(d.Steps))
	for _, step := range d.Steps {
		steps = append(steps, domain.GuideStep{
			Order: step.OrderBy,
			Title: step.Title,
			Text:  step.Text,
		})
	}

	return domain.Guide{
		ID:           d.GuideID,
		Title:        d.Title,
		Device:       d.Subject,
		Category:     d.Category,
		Difficulty:   d.Difficulty,
		Summary:      d.Summary,
		URL:          d.URL,
		Tools:        tools,
		Parts:        parts,
		TimeRequired: d.TimeRequired,
		ImageURL:     imageURL,
		Steps:        steps,
	}
}
