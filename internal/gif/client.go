// Package gif is a thin proxy over the Giphy search API. The backend fronts
// Giphy so the API key never ships to the browser.
package gif

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nbarreto/gamereel/internal/apperror"
)

const (
	defaultBaseURL = "https://api.giphy.com/v1/gifs"
	defaultTimeout = 10 * time.Second
	defaultLimit   = 24
	maxLimit       = 50
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey  string
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
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// GIF is the slim shape handed to the frontend picker: a still preview plus
// the embeddable URL.
type GIF struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	PreviewURL string `json:"preview_url"`
}

type giphyResponse struct {
	Data []struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Images struct {
			Original struct {
				URL string `json:"url"`
			} `json:"original"`
			FixedHeightSmall struct {
				URL string `json:"url"`
			} `json:"fixed_height_small"`
		} `json:"images"`
	} `json:"data"`
}

// Search returns GIFs matching the query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]GIF, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.ValidationFailed("q", "a search query is required")
	}

	params := url.Values{}
	params.Set("q", query)
	return c.get(ctx, "/search", params, limit)
}

// Trending returns the current trending GIFs, used to seed the picker before
// the user types anything.
func (c *Client) Trending(ctx context.Context, limit int) ([]GIF, error) {
	return c.get(ctx, "/trending", url.Values{}, limit)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, limit int) ([]GIF, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	params.Set("api_key", c.apiKey)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("rating", "pg-13")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("gif: building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, apperror.Unavailable("gif search")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Unavailable("gif search")
	}

	var parsed giphyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperror.Unavailable("gif search")
	}

	gifs := make([]GIF, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		gifs = append(gifs, GIF{
			ID:         item.ID,
			Title:      item.Title,
			URL:        item.Images.Original.URL,
			PreviewURL: item.Images.FixedHeightSmall.URL,
		})
	}
	return gifs, nil
}
