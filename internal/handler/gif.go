package handler

import (
	"log/slog"
	"net/http"

	"github.com/nbarreto/gamereel/internal/gif"
)

// GIFHandler proxies the Giphy picker endpoints.
type GIFHandler struct {
	gifs   *gif.Client
	logger *slog.Logger
}

func NewGIFHandler(gifs *gif.Client, logger *slog.Logger) *GIFHandler {
	return &GIFHandler{gifs: gifs, logger: logger}
}

// HandleSearch returns GIFs matching the query.
//
// GET /api/gifs/search?q=&limit=
func (h *GIFHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	gifs, err := h.gifs.Search(r.Context(), r.URL.Query().Get("q"), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gifs)
}

// HandleTrending seeds the picker before the user types.
//
// GET /api/gifs/trending?limit=
func (h *GIFHandler) HandleTrending(w http.ResponseWriter, r *http.Request) {
	gifs, err := h.gifs.Trending(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gifs)
}
