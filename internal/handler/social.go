package handler

import (
	"log/slog"
	"net/http"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/auth"
	"github.com/nbarreto/gamereel/internal/service"
)

// SocialHandler exposes the engagement endpoints: likes, reposts, follows,
// saved games, and public profiles.
type SocialHandler struct {
	social *service.SocialService
	logger *slog.Logger
}

func NewSocialHandler(social *service.SocialService, logger *slog.Logger) *SocialHandler {
	return &SocialHandler{social: social, logger: logger}
}

// HandleToggleLike flips the caller's like on a review.
//
// POST /api/reviews/{id}/like
func (h *SocialHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
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

	liked, err := h.social.ToggleLike(r.Context(), userID, reviewID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

type repostRequest struct {
	Comment string `json:"comment"`
}

// HandleToggleRepost flips the caller's repost of a review, with an optional
// caption on the way in.
//
// POST /api/reviews/{id}/repost
func (h *SocialHandler) HandleToggleRepost(w http.ResponseWriter, r *http.Request) {
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

	// The body is optional: a bare toggle carries no caption.
	var req repostRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	reposted, err := h.social.ToggleRepost(r.Context(), userID, reviewID, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"reposted": reposted})
}

type followRequest struct {
	UserID int64 `json:"user_id"`
}

// HandleToggleFollow flips the caller's follow edge to another user.
//
// POST /api/follow {"user_id":...}
func (h *SocialHandler) HandleToggleFollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req followRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	following, err := h.social.ToggleFollow(r.Context(), userID, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"following": following})
}

// HandleListSavedGames returns the caller's saved list with game metadata.
//
// GET /api/saved-games
func (h *SocialHandler) HandleListSavedGames(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	saved, err := h.social.SavedGames(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// HandleListSavedGamesByUsername is the public view of a user's saved list.
//
// GET /api/saved-games/{username}
func (h *SocialHandler) HandleListSavedGamesByUsername(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		writeError(w, apperror.ValidationFailed("username", "a username is required"))
		return
	}

	saved, err := h.social.SavedGamesByUsername(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

type saveGameRequest struct {
	GameID int64 `json:"id_game"`
}

// HandleSaveGame adds a game to the caller's saved list.
//
// POST /api/saved-games {"id_game":...}
func (h *SocialHandler) HandleSaveGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req saveGameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.social.SaveGame(r.Context(), userID, req.GameID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "saved"})
}

// HandleUnsaveGame removes a game from the caller's saved list.
//
// DELETE /api/saved-games?id_game=
func (h *SocialHandler) HandleUnsaveGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	gameID := queryInt64(r, "id_game")
	if gameID <= 0 {
		writeError(w, apperror.ValidationFailed("id_game", "a numeric game id is required"))
		return
	}

	if err := h.social.UnsaveGame(r.Context(), userID, gameID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleProfile returns a user's public profile. The viewer-follows flag is
// populated when the request carries a valid token.
//
// GET /api/user/{username}
func (h *SocialHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		writeError(w, apperror.ValidationFailed("username", "a username is required"))
		return
	}
	viewerID, _ := auth.UserIDFromContext(r.Context())

	profile, err := h.social.Profile(r.Context(), username, viewerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
