// Package catalog talks to the IGDB game-catalog API.
//
// IGDB authenticates with a short-lived bearer token obtained by a
// client-credentials exchange against the Twitch token endpoint. The
// golang.org/x/oauth2/clientcredentials token source handles acquisition and
// refresh; every API request additionally carries the Client-ID header IGDB
// requires.
//
// Queries use IGDB's Apicalypse body format, e.g.:
//
//	fields name, summary, rating; where id = (1942, 119133); limit 2;
//
// Raw responses are normalized here — image URL rewriting included — so
// downstream components only ever see the canonical model.GameRecord shape.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/model"
)

const (
	defaultBaseURL  = "https://api.igdb.com/v4"
	defaultTokenURL = "https://id.twitch.tv/oauth2/token"
	defaultTimeout  = 10 * time.Second
)

// Config holds the catalog credentials and endpoint overrides. TokenURL and
// BaseURL default to the real Twitch/IGDB endpoints; tests point them at an
// httptest server.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	BaseURL      string
	Timeout      time.Duration
}

// Client issues authenticated catalog requests. The zero value is not
// usable — construct with New.
type Client struct {
	httpClient *http.Client
	clientID   string
	baseURL    string
	logger     *slog.Logger
}

// New builds a Client whose underlying http.Client transparently acquires
// and refreshes the bearer token. The per-call timeout bounds token fetch
// plus API call together: a stuck upstream degrades, it never hangs a
// request.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	httpClient := creds.Client(context.Background())
	httpClient.Timeout = cfg.Timeout

	return &Client{
		httpClient: httpClient,
		clientID:   cfg.ClientID,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:     logger,
	}
}

// igdbGame mirrors the slice of the IGDB response we consume. IGDB returns
// far more; we only unmarshal what the canonical record needs.
type igdbGame struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Summary string   `json:"summary"`
	Rating  *float64 `json:"rating"`
	Cover   *struct {
		URL string `json:"url"`
	} `json:"cover"`
	Artworks []struct {
		URL string `json:"url"`
	} `json:"artworks"`
	Platforms []struct {
		Name string `json:"name"`
	} `json:"platforms"`
	ReleaseDates []struct {
		Human string `json:"human"`
	} `json:"release_dates"`
}

const gameFields = `fields name, summary, rating, cover.url, artworks.url, platforms.name, release_dates.human;`

// FetchOne retrieves a single game. A valid-shaped ID the catalog doesn't
// know is ErrNotFound; a malformed ID is ErrValidation; transport, token,
// and 5xx failures are ErrUnavailable.
func (c *Client) FetchOne(ctx context.Context, gameID int64) (*model.GameRecord, error) {
	if gameID <= 0 {
		return nil, apperror.ValidationFailed("id", "game id must be a positive integer")
	}

	body := fmt.Sprintf("%s where id = %d;", gameFields, gameID)
	games, err := c.queryGames(ctx, body)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, apperror.NotFound("game", gameID)
	}
	return normalizeGame(games[0]), nil
}

// FetchBatch retrieves many games in one request. Partial results are the
// contract: IDs the upstream does not return are absent from the map, never
// an error. Only a whole-call failure (token, transport, 5xx) errors.
func (c *Client) FetchBatch(ctx context.Context, gameIDs []int64) (map[int64]*model.GameRecord, error) {
	result := make(map[int64]*model.GameRecord, len(gameIDs))
	if len(gameIDs) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(gameIDs))
	for _, id := range gameIDs {
		if id <= 0 {
			continue // malformed IDs can't match anything upstream
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	if len(ids) == 0 {
		return result, nil
	}

	body := fmt.Sprintf("%s where id = (%s); limit %d;",
		gameFields, strings.Join(ids, ", "), len(ids))
	games, err := c.queryGames(ctx, body)
	if err != nil {
		return nil, err
	}

	for _, game := range games {
		result[game.ID] = normalizeGame(game)
	}
	return result, nil
}

// Suggestion is a minimal search hit: enough for a typeahead dropdown.
type Suggestion struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Search runs a free-text catalog search and returns up to limit hits.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.ValidationFailed("query", "search query is required")
	}
	if limit <= 0 {
		limit = 10
	}

	// Apicalypse strings are double-quoted; strip embedded quotes rather
	// than trying to escape them.
	query = strings.ReplaceAll(query, `"`, ``)
	body := fmt.Sprintf(`fields name; search "%s"; limit %d;`, query, limit)

	raw, err := c.post(ctx, "/games", body)
	if err != nil {
		return nil, err
	}

	var hits []Suggestion
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, fmt.Errorf("catalog: decoding search response: %w", err)
	}
	return hits, nil
}

func (c *Client) queryGames(ctx context.Context, body string) ([]igdbGame, error) {
	raw, err := c.post(ctx, "/games", body)
	if err != nil {
		return nil, err
	}

	var games []igdbGame
	if err := json.Unmarshal(raw, &games); err != nil {
		return nil, fmt.Errorf("catalog: decoding games response: %w", err)
	}
	return games, nil
}

func (c *Client) post(ctx context.Context, path, body string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("catalog: building request: %w", err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Token fetch failures surface here too — a RetrieveError from
		// the credentials exchange, or a plain transport error. Both mean
		// the upstream can't be reached right now.
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		c.logger.Warn("catalog request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unavailable("game catalog")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Unavailable("game catalog")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return payload, nil
	case resp.StatusCode == http.StatusBadRequest:
		return nil, apperror.ValidationFailed("query", "catalog rejected the query")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.logger.Warn("catalog rejected credentials", slog.Int("status", resp.StatusCode))
		return nil, apperror.Unavailable("game catalog")
	default:
		c.logger.Warn("catalog returned unexpected status",
			slog.Int("status", resp.StatusCode))
		return nil, apperror.Unavailable("game catalog")
	}
}

// normalizeGame converts a raw IGDB object into the canonical record:
// HTTPS-absolute image URLs, cover and artworks rewritten to useful
// resolution variants, and the first human release-date label.
func normalizeGame(game igdbGame) *model.GameRecord {
	record := &model.GameRecord{
		ID:      game.ID,
		Name:    game.Name,
		Summary: game.Summary,
		Rating:  game.Rating,
	}

	if game.Cover != nil {
		record.CoverURL = normalizeImageURL(game.Cover.URL, "t_cover_big")
	}
	for _, artwork := range game.Artworks {
		if url := normalizeImageURL(artwork.URL, "t_screenshot_big"); url != "" {
			record.ArtworkURLs = append(record.ArtworkURLs, url)
		}
	}
	for _, platform := range game.Platforms {
		if platform.Name != "" {
			record.Platforms = append(record.Platforms, platform.Name)
		}
	}
	if len(game.ReleaseDates) > 0 {
		record.ReleaseDate = game.ReleaseDates[0].Human
	}
	return record
}

// normalizeImageURL fixes the two IGDB image quirks: URLs are
// protocol-relative ("//images.igdb.com/...") and always reference the
// t_thumb size variant regardless of what resolution the caller wants.
func normalizeImageURL(url, sizeVariant string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}
	return strings.Replace(url, "t_thumb", sizeVariant, 1)
}
