// Package ner provides the client for the external entity-extraction
// service and the post-processing that turns raw entities into a clean
// location list.
package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnavailable indicates the entity-extraction service is unreachable.
var ErrUnavailable = errors.New("entity extraction service unavailable")

// LabelLocation is the entity label the service uses for place names.
const LabelLocation = "LOC"

const defaultTimeout = 10 * time.Second

// Entity is one extracted span with its label and confidence.
type Entity struct {
	Text  string  `json:"word"`
	Label string  `json:"entity_group"`
	Score float64 `json:"score"`
}

// Extractor extracts labeled entities from text.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]Entity, error)
}

// Client is an HTTP client for the entity-extraction service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// extractRequest is the request body for POST /extract.
type extractRequest struct {
	Text string `json:"text"`
}

// extractResponse is the response body from POST /extract.
type extractResponse struct {
	Entities []Entity `json:"entities"`
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a new extraction client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extract sends text to the extraction service and returns the entities
// in the order the service produced them.
func (c *Client) Extract(ctx context.Context, text string) ([]Entity, error) {
	body, err := json.Marshal(&extractRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction service returned %d", resp.StatusCode)
	}

	var result extractResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&result); decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}

	return result.Entities, nil
}

// Health checks if the extraction service is healthy.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy status: %d", resp.StatusCode)
	}
	return nil
}
