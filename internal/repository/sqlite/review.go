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

var _ repository.ReviewRepository = (*DB)(nil)

const reviewColumns = `id, user_id, game_id, body, gif_url, created_at`

func (db *DB) CreateReview(ctx context.Context, review *model.Review) error {
	now := time.Now().UTC()
	review.CreatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO reviews (user_id, game_id, body, gif_url, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		review.UserID, review.GameID, review.Body, review.GIFURL, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating review: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new review id: %w", err)
	}
	review.ID = id
	return nil
}

func (db *DB) GetReview(ctx context.Context, id int64) (*model.Review, error) {
	var review model.Review
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id,
	).Scan(&review.ID, &review.UserID, &review.GameID, &review.Body,
		&review.GIFURL, &review.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("review", id)
		}
		return nil, fmt.Errorf("sqlite: getting review %d: %w", id, err)
	}
	return &review, nil
}

// GetReviewBatch loads the reviews reposts point at, keyed by ID. Reposts
// whose review vanished between queries simply find no entry.
func (db *DB) GetReviewBatch(ctx context.Context, ids []int64) (map[int64]model.Review, error) {
	result := make(map[int64]model.Review, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id IN (`+placeholders(len(ids))+`)`,
		int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: batch getting reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var review model.Review
		if err := rows.Scan(&review.ID, &review.UserID, &review.GameID,
			&review.Body, &review.GIFURL, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning review row: %w", err)
		}
		result[review.ID] = review
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reviews: %w", err)
	}
	return result, nil
}

// ListReviews returns reviews newest-first, optionally narrowed by game
// and/or author.
func (db *DB) ListReviews(ctx context.Context, filter repository.ReviewFilter, opts repository.ListOptions) ([]model.Review, error) {
	where, args := reviewFilterClause(filter)

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews`+where+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]model.Review, 0, limit)
	for rows.Next() {
		var review model.Review
		if err := rows.Scan(&review.ID, &review.UserID, &review.GameID,
			&review.Body, &review.GIFURL, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning review row: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reviews: %w", err)
	}
	return reviews, nil
}

func (db *DB) CountReviews(ctx context.Context, filter repository.ReviewFilter) (int, error) {
	where, args := reviewFilterClause(filter)

	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting reviews: %w", err)
	}
	return count, nil
}

// DeleteReview removes the review. Likes, comments, and reposts go with it
// via the ON DELETE CASCADE foreign keys.
func (db *DB) DeleteReview(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting review %d: %w", id, err)
	}
	return notFoundIfZero(res, "review", id)
}

// MostReviewedGames ranks games by review volume since the given time.
// MAX(id) identifies the newest qualifying review of each game: IDs are an
// AUTOINCREMENT sequence, so insertion order and creation order agree.
func (db *DB) MostReviewedGames(ctx context.Context, since time.Time, limit int) ([]repository.GameReviewCount, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT game_id, COUNT(*) AS review_count, MAX(id) AS latest_review_id
		 FROM reviews
		 WHERE created_at >= ?
		 GROUP BY game_id
		 ORDER BY review_count DESC, latest_review_id DESC
		 LIMIT ?`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: ranking most-reviewed games: %w", err)
	}
	defer rows.Close()

	ranking := make([]repository.GameReviewCount, 0, limit)
	for rows.Next() {
		var row repository.GameReviewCount
		if err := rows.Scan(&row.GameID, &row.ReviewCount, &row.LatestReviewID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning ranking row: %w", err)
		}
		ranking = append(ranking, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating ranking: %w", err)
	}
	return ranking, nil
}

func reviewFilterClause(filter repository.ReviewFilter) (string, []any) {
	var (
		where string
		args  []any
	)
	switch {
	case filter.GameID != 0 && filter.UserID != 0:
		where = ` WHERE game_id = ? AND user_id = ?`
		args = []any{filter.GameID, filter.UserID}
	case filter.GameID != 0:
		where = ` WHERE game_id = ?`
		args = []any{filter.GameID}
	case filter.UserID != 0:
		where = ` WHERE user_id = ?`
		args = []any{filter.UserID}
	}
	return where, args
}
