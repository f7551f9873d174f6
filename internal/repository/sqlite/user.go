package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/model"
	"github.com/nbarreto/gamereel/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, username, email, password_hash, photo_url, created_at`

// Create inserts a new user. The UNIQUE constraints on username and email
// surface as apperror.ErrConflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, photo_url, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.PhotoURL, now,
	)
	if err != nil {
		return conflictIfUnique(err, "username or email already taken", "sqlite: creating user")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id
	return nil
}

func (db *DB) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return db.getUser(ctx, `id = ?`, id)
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `email = ?`, email)
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx, `username = ?`, username)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var user model.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.PhotoURL, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", arg)
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}
	return &user, nil
}

// GetUserBatch loads the users for the given IDs; missing IDs are absent from
// the result. The feed assembler uses this to attach author names in one
// query per page.
func (db *DB) GetUserBatch(ctx context.Context, ids []int64) (map[int64]model.User, error) {
	result := make(map[int64]model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders(len(ids))+`)`,
		int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: batch getting users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user model.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email,
			&user.PasswordHash, &user.PhotoURL, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		result[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return result, nil
}

func (db *DB) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("sqlite: updating password for user %d: %w", id, err)
	}
	return notFoundIfZero(res, "user", id)
}

func (db *DB) UpdatePhoto(ctx context.Context, id int64, photoURL string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET photo_url = ? WHERE id = ?`, photoURL, id)
	if err != nil {
		return fmt.Errorf("sqlite: updating photo for user %d: %w", id, err)
	}
	return notFoundIfZero(res, "user", id)
}

// notFoundIfZero maps "zero rows affected" to the domain not-found error —
// one query instead of SELECT-then-UPDATE.
func notFoundIfZero(res sql.Result, resource string, id any) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
