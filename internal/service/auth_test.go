package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/auth"
	"github.com/nbarreto/gamereel/internal/model"
)

type accountUsers struct {
	mockFeedUsers
	nextID int64
}

func newAccountUsers() *accountUsers {
	return &accountUsers{mockFeedUsers: mockFeedUsers{users: map[int64]model.User{}}, nextID: 1}
}

func (m *accountUsers) CreateUser(ctx context.Context, user *model.User) error {
	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperror.Conflict("username or email already taken")
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = *user
	return nil
}

func (m *accountUsers) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *accountUsers) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	u, ok := m.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.PasswordHash = passwordHash
	m.users[id] = u
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *accountUsers) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	if err != nil {
		t.Fatalf("creating token service: %v", err)
	}
	users := newAccountUsers()
	svc := NewAuthService(users, tokens, auth.NewPasswordServiceForTest(bcrypt.MinCost), discardLogger())
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, "ana", "ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Token == "" || result.User.ID == 0 {
		t.Fatalf("expected a signed-in user, got %+v", result)
	}
	if result.User.PasswordHash == "secret1" {
		t.Fatal("the password must be hashed")
	}

	login, err := svc.Login(ctx, "ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if login.User.ID != result.User.ID {
		t.Fatal("login returned a different user")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{name: "short username", username: "ab", email: "a@example.com", password: "secret1"},
		{name: "bad email", username: "ana", email: "not-an-email", password: "secret1"},
		{name: "short password", username: "ana", email: "a@example.com", password: "12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.email, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateConflicts(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ana", "ana@example.com", "secret1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.Register(ctx, "ana", "other@example.com", "secret1")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected Conflict for a taken username, got %v", err)
	}
}

func TestLogin_Failures(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ana", "ana@example.com", "secret1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Login(ctx, "nobody@example.com", "secret1")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected NotFound for an unknown email, got %v", err)
	}

	_, err = svc.Login(ctx, "ana@example.com", "wrong")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("expected Unauthorized for a wrong password, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, "ana", "ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	userID := result.User.ID

	if err := svc.ChangePassword(ctx, userID, "wrong", "newsecret"); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("expected Unauthorized for a wrong current password, got %v", err)
	}
	if err := svc.ChangePassword(ctx, userID, "secret1", "newsecret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Login(ctx, "ana@example.com", "newsecret"); err != nil {
		t.Fatalf("expected the new password to work, got %v", err)
	}
	if _, err := svc.Login(ctx, "ana@example.com", "secret1"); err == nil {
		t.Fatal("expected the old password to stop working")
	}
}
