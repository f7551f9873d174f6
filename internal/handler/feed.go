package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nbarreto/gamereel/internal/auth"
	"github.com/nbarreto/gamereel/internal/model"
	"github.com/nbarreto/gamereel/internal/service"
)

// FeedHandler serves the merged review/repost feed.
type FeedHandler struct {
	feed   *service.FeedService
	logger *slog.Logger
}

func NewFeedHandler(feed *service.FeedService, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{feed: feed, logger: logger}
}

// HandleFeed returns one page of a feed.
//
// GET /api/feed?busca=game|user|ambos&id_game=&id_user=&page=&per_page=
//
// The viewer is taken from the bearer token when present; anonymous readers
// get the same page with the viewer-relative flags cleared.
func (h *FeedHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	scope := model.FeedScope(r.URL.Query().Get("busca"))
	if scope == "" {
		scope = model.ScopeGlobal
	}

	query := model.FeedQuery{
		Scope:    scope,
		GameID:   queryInt64(r, "id_game"),
		UserID:   queryInt64(r, "id_user"),
		ViewerID: viewerID,
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "per_page", 0),
	}

	page, err := h.feed.GetFeed(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleMostReviewed returns the games with the most reviews over the last
// seven days, each with its newest review.
//
// GET /api/games/most-reviewed
func (h *FeedHandler) HandleMostReviewed(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	games, err := h.feed.MostReviewedThisWeek(r.Context(), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func queryInt64(r *http.Request, name string) int64 {
	value, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return value
}
