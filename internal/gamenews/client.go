// Package gamenews proxies the GamerPower giveaways API for the news page.
package gamenews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nbarreto/gamereel/internal/apperror"
)

const (
	defaultBaseURL = "https://www.gamerpower.com/api"
	defaultTimeout = 10 * time.Second
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Giveaway mirrors the upstream item, trimmed to the fields the news page
// renders.
type Giveaway struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Worth       string `json:"worth"`
	Thumbnail   string `json:"thumbnail"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Platforms   string `json:"platforms"`
	EndDate     string `json:"end_date"`
	URL         string `json:"open_giveaway_url"`
}

// Giveaways returns the currently open game giveaways.
func (c *Client) Giveaways(ctx context.Context) ([]Giveaway, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/giveaways", nil)
	if err != nil {
		return nil, fmt.Errorf("gamenews: building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, apperror.Unavailable("game news")
	}
	defer resp.Body.Close()

	// GamerPower answers 201 with an informational body when no giveaways
	// are live.
	if resp.StatusCode == http.StatusCreated {
		return []Giveaway{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Unavailable("game news")
	}

	var giveaways []Giveaway
	if err := json.NewDecoder(resp.Body).Decode(&giveaways); err != nil {
		return nil, apperror.Unavailable("game news")
	}
	return giveaways, nil
}
