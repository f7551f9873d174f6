package handler

import (
	"log/slog"
	"net/http"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/gamenews"
	"github.com/nbarreto/gamereel/internal/service"
)

// GameHandler serves game metadata, catalog search, and the news page.
type GameHandler struct {
	games  *service.GameCacheService
	news   *gamenews.Client
	logger *slog.Logger
}

func NewGameHandler(games *service.GameCacheService, news *gamenews.Client, logger *slog.Logger) *GameHandler {
	return &GameHandler{games: games, news: news, logger: logger}
}

// HandleGetGame returns the cached (or freshly fetched) record for one game.
//
// GET /api/game?id=
func (h *GameHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	id := queryInt64(r, "id")
	if id <= 0 {
		writeError(w, apperror.ValidationFailed("id", "a numeric game id is required"))
		return
	}

	record, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// HandleSearch runs a full catalog name search.
//
// POST /api/search {"query":..., "limit":...}
func (h *GameHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}

	hits, err := h.games.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

// HandleSearchSuggestions is the short-list variant backing the search box
// autocomplete.
//
// POST /api/games/search-suggestions {"query":...}
func (h *GameHandler) HandleSearchSuggestions(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	hits, err := h.games.Search(r.Context(), req.Query, 5)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

// HandleGameNews returns the open giveaways list.
//
// GET /api/game-news
func (h *GameHandler) HandleGameNews(w http.ResponseWriter, r *http.Request) {
	giveaways, err := h.news.Giveaways(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, giveaways)
}
