package service

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/auth"
	"github.com/nbarreto/gamereel/internal/model"
	"github.com/nbarreto/gamereel/internal/repository"
)

// AuthService handles registration, login, and account maintenance. It sits
// between the HTTP handlers and the user repository plus the auth utilities.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler can
// respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates an account and signs the new user in. Username/email
// uniqueness is enforced by the database; a duplicate comes back as Conflict.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if n := utf8.RuneCountInString(username); n < 3 || n > 30 {
		return nil, apperror.ValidationFailed("username", "username must be 3 to 30 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "a valid email address is required")
	}
	if len(password) < 6 {
		return nil, apperror.ValidationFailed("password", "password must be at least 6 characters")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID, "username", username)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates by email and password. An unknown email surfaces as
// NotFound; a wrong password as Unauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

// ChangePassword replaces the user's password. When currentPassword is
// non-empty it must verify against the stored hash first.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return apperror.ValidationFailed("password", "password must be at least 6 characters")
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if currentPassword != "" {
		if err := s.passwords.Verify(user.PasswordHash, currentPassword); err != nil {
			return apperror.Unauthorized("current password is incorrect")
		}
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return apperror.ValidationFailed("password", err.Error())
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// CurrentUser returns the full record of the signed-in user.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	return s.users.GetUser(ctx, userID)
}

// UpdatePhoto stores the path of a freshly uploaded profile photo.
func (s *AuthService) UpdatePhoto(ctx context.Context, userID int64, photoURL string) error {
	return s.users.UpdatePhoto(ctx, userID, photoURL)
}
