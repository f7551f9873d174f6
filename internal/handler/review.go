package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/auth"
	"github.com/nbarreto/gamereel/internal/service"
)

// ReviewHandler exposes the review write endpoints. Reads go through the
// feed endpoints instead.
type ReviewHandler struct {
	reviews *service.ReviewService
	logger  *slog.Logger
}

func NewReviewHandler(reviews *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

type createReviewRequest struct {
	GameID  int64  `json:"id_game"`
	Comment string `json:"comment"`
	GIFURL  string `json:"gif_url"`
}

// HandleCreate posts a review.
//
// POST /api/reviews {"id_game":..., "comment":..., "gif_url":...}
func (h *ReviewHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req createReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	review, err := h.reviews.CreateReview(r.Context(), userID, req.GameID, req.Comment, req.GIFURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// HandleDelete removes one of the caller's reviews.
//
// DELETE /api/reviews/{id}
func (h *ReviewHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	reviewID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.reviews.DeleteReview(r.Context(), userID, reviewID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed(name, "a numeric id is required")
	}
	return id, nil
}
