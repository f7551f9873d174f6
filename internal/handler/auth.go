package handler

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/auth"
	"github.com/nbarreto/gamereel/internal/service"
)

// maxUploadBytes caps profile photo uploads at 5 MiB.
const maxUploadBytes = 5 << 20

// AuthHandler exposes registration, login, and account endpoints.
type AuthHandler struct {
	auths     *service.AuthService
	uploadDir string
	logger    *slog.Logger
}

func NewAuthHandler(auths *service.AuthService, uploadDir string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auths: auths, uploadDir: uploadDir, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	PhotoURL string `json:"photo_url,omitempty"`
}

func toAuthResponse(result *service.AuthResult) authResponse {
	return authResponse{
		Token:    result.Token,
		ID:       result.User.ID,
		Username: result.User.Username,
		Email:    result.User.Email,
		PhotoURL: result.User.PhotoURL,
	}
}

// HandleRegister creates an account.
//
// POST /api/register {"username":..., "email":..., "password":...}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auths.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAuthResponse(result))
}

// HandleLogin authenticates by email and password.
//
// POST /api/login {"email":..., "password":...}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auths.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(result))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword replaces the signed-in user's password.
//
// POST /api/change-password
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auths.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

// HandleCurrentUser returns the signed-in user's own record.
//
// POST /api/user
func (h *AuthHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	user, err := h.auths.CurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUploadPhoto stores a new profile photo and records its public path.
//
// POST /api/profile/upload, multipart field "photo".
func (h *AuthHandler) HandleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, apperror.ValidationFailed("photo", "upload too large or malformed"))
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, apperror.ValidationFailed("photo", "a photo file is required"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		writeError(w, apperror.ValidationFailed("photo", "unsupported image format"))
		return
	}

	// xid gives sortable, collision-free names without coordinating with
	// the database.
	name := xid.New().String() + ext
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		h.logger.Error("failed to create upload file", "error", err)
		writeError(w, err)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		h.logger.Error("failed to write upload file", "error", err)
		writeError(w, err)
		return
	}

	photoURL := "/uploads/" + name
	if err := h.auths.UpdatePhoto(r.Context(), userID, photoURL); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"photo_url": photoURL})
}
