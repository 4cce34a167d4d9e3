package ifixit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any, operation string) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "repair-guide-engine/1.0")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return newHTTPStatusError(operation, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

// getGuideList tolerates both response shapes the catalog serves: a bare
// JSON array of guides, or an envelope with a results field.
func (c *Client) getGuideList(ctx context.Context, path string, params url.Values, out *[]guideDocument, operation string) error {
	var raw json.RawMessage
	if err := c.getJSON(ctx, path, params, &raw, operation); err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err == nil {
		return nil
	}

	var envelope struct {
		Results []guideDocument `json:"results"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode %s guide list: %w", operation, err)
	}
	*out = envelope.Results
	return nil
}

func newHTTPStatusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &HTTPStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}
