package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/auth"
	"github.com/nbarreto/gamereel/internal/repository"
	"github.com/nbarreto/gamereel/internal/service"
)

// CommentHandler exposes the comment thread endpoints.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type createCommentRequest struct {
	ReviewID int64  `json:"review_id"`
	ParentID *int64 `json:"parent_id"`
	Comment  string `json:"comment"`
	GIFURL   string `json:"gif_url"`
}

// HandleCreate posts a comment or a reply.
//
// POST /api/comments
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req createCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.CreateComment(r.Context(), userID, req.ReviewID, req.ParentID, req.Comment, req.GIFURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

type updateCommentRequest struct {
	Comment string `json:"comment"`
	GIFURL  string `json:"gif_url"`
}

// HandleUpdate edits one of the caller's comments.
//
// PUT /api/comments/{id}
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	commentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.UpdateComment(r.Context(), userID, commentID, req.Comment, req.GIFURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// HandleDelete removes one of the caller's comments. Replies of a deleted
// top-level comment are kept and promoted to top level.
//
// DELETE /api/comments/{id}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	commentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.comments.DeleteComment(r.Context(), userID, commentID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListByReview returns the comment thread of a review.
//
// GET /api/reviews/{id}/comments?limit=&offset=
func (h *CommentHandler) HandleListByReview(w http.ResponseWriter, r *http.Request) {
	reviewID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	opts := repository.ListOptions{
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	}
	thread, err := h.comments.ListByReview(r.Context(), reviewID, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, thread)
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}
