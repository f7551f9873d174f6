package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/nbarreto/gamereel/internal/model"
	"github.com/nbarreto/gamereel/internal/repository"
)

var (
	_ repository.LikeRepository      = (*DB)(nil)
	_ repository.FollowRepository    = (*DB)(nil)
	_ repository.SavedGameRepository = (*DB)(nil)
)

// CreateLike inserts the like row. Duplicate pairs hit the UNIQUE index and
// come back as apperror.ErrConflict — exactly one row survives a race.
func (db *DB) CreateLike(ctx context.Context, like *model.Like) error {
	now := time.Now().UTC()
	like.CreatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO likes (user_id, review_id, created_at) VALUES (?, ?, ?)`,
		like.UserID, like.ReviewID, now,
	)
	if err != nil {
		return conflictIfUnique(err, "review already liked", "sqlite: creating like")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new like id: %w", err)
	}
	like.ID = id
	return nil
}

func (db *DB) DeleteLike(ctx context.Context, userID, reviewID int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM likes WHERE user_id = ? AND review_id = ?`, userID, reviewID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting like: %w", err)
	}
	return notFoundIfZero(res, "like", reviewID)
}

func (db *DB) LikeExists(ctx context.Context, userID, reviewID int64) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM likes WHERE user_id = ? AND review_id = ?)`,
		userID, reviewID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking like: %w", err)
	}
	return exists, nil
}

func (db *DB) CreateFollow(ctx context.Context, follow *model.Follow) error {
	now := time.Now().UTC()
	follow.CreatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, ?)`,
		follow.FollowerID, follow.FollowingID, now,
	)
	if err != nil {
		return conflictIfUnique(err, "already following", "sqlite: creating follow")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new follow id: %w", err)
	}
	follow.ID = id
	return nil
}

func (db *DB) DeleteFollow(ctx context.Context, followerID, followingID int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting follow: %w", err)
	}
	return notFoundIfZero(res, "follow", followingID)
}

func (db *DB) FollowExists(ctx context.Context, followerID, followingID int64) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = ? AND following_id = ?)`,
		followerID, followingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking follow: %w", err)
	}
	return exists, nil
}

func (db *DB) CountFollowers(ctx context.Context, userID int64) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE following_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting followers: %w", err)
	}
	return count, nil
}

func (db *DB) CountFollowing(ctx context.Context, userID int64) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting following: %w", err)
	}
	return count, nil
}

func (db *DB) ListFollowers(ctx context.Context, userID int64) ([]model.User, error) {
	return db.listFollowUsers(ctx,
		`SELECT `+prefixedUserColumns+`
		 FROM users u
		 JOIN follows f ON f.follower_id = u.id
		 WHERE f.following_id = ?
		 ORDER BY f.created_at DESC`, userID)
}

func (db *DB) ListFollowing(ctx context.Context, userID int64) ([]model.User, error) {
	return db.listFollowUsers(ctx,
		`SELECT `+prefixedUserColumns+`
		 FROM users u
		 JOIN follows f ON f.following_id = u.id
		 WHERE f.follower_id = ?
		 ORDER BY f.created_at DESC`, userID)
}

const prefixedUserColumns = `u.id, u.username, u.email, u.password_hash, u.photo_url, u.created_at`

func (db *DB) listFollowUsers(ctx context.Context, query string, userID int64) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing follow users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var user model.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email,
			&user.PasswordHash, &user.PhotoURL, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

func (db *DB) CreateSavedGame(ctx context.Context, saved *model.SavedGame) error {
	now := time.Now().UTC()
	saved.CreatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO saved_games (user_id, game_id, created_at) VALUES (?, ?, ?)`,
		saved.UserID, saved.GameID, now,
	)
	if err != nil {
		return conflictIfUnique(err, "game already saved", "sqlite: creating saved game")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new saved game id: %w", err)
	}
	saved.ID = id
	return nil
}

func (db *DB) DeleteSavedGame(ctx context.Context, userID, gameID int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM saved_games WHERE user_id = ? AND game_id = ?`, userID, gameID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting saved game: %w", err)
	}
	return notFoundIfZero(res, "saved game", gameID)
}

func (db *DB) ListSavedGames(ctx context.Context, userID int64) ([]model.SavedGame, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, game_id, created_at
		 FROM saved_games
		 WHERE user_id = ?
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing saved games: %w", err)
	}
	defer rows.Close()

	var saved []model.SavedGame
	for rows.Next() {
		var sg model.SavedGame
		if err := rows.Scan(&sg.ID, &sg.UserID, &sg.GameID, &sg.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning saved game row: %w", err)
		}
		saved = append(saved, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating saved games: %w", err)
	}
	return saved, nil
}
