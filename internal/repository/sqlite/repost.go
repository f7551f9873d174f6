package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nbarreto/gamereel/internal/model"
	"github.com/nbarreto/gamereel/internal/repository"
)

var _ repository.RepostRepository = (*DB)(nil)

// CreateRepost inserts the (user, review) pair. A concurrent duplicate loses
// the race on the UNIQUE index and gets apperror.ErrConflict — the service
// maps that to "already reposted" rather than failing.
func (db *DB) CreateRepost(ctx context.Context, repost *model.Repost) error {
	now := time.Now().UTC()
	repost.CreatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO reposts (user_id, review_id, body, created_at)
		 VALUES (?, ?, ?, ?)`,
		repost.UserID, repost.ReviewID, repost.Body, now,
	)
	if err != nil {
		return conflictIfUnique(err, "review already reposted", "sqlite: creating repost")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new repost id: %w", err)
	}
	repost.ID = id
	return nil
}

func (db *DB) DeleteRepost(ctx context.Context, userID, reviewID int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM reposts WHERE user_id = ? AND review_id = ?`, userID, reviewID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting repost: %w", err)
	}
	return notFoundIfZero(res, "repost", reviewID)
}

func (db *DB) RepostExists(ctx context.Context, userID, reviewID int64) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM reposts WHERE user_id = ? AND review_id = ?)`,
		userID, reviewID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking repost: %w", err)
	}
	return exists, nil
}

func (db *DB) ListRecentReposts(ctx context.Context, filter repository.RepostFilter, opts repository.ListOptions) ([]model.Repost, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	where, args := repostFilterClause(filter)
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, review_id, body, created_at
		 FROM reposts`+where+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reposts: %w", err)
	}
	defer rows.Close()

	reposts := make([]model.Repost, 0, limit)
	for rows.Next() {
		var repost model.Repost
		if err := rows.Scan(&repost.ID, &repost.UserID, &repost.ReviewID,
			&repost.Body, &repost.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning repost row: %w", err)
		}
		reposts = append(reposts, repost)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reposts: %w", err)
	}
	return reposts, nil
}

func (db *DB) CountReposts(ctx context.Context, filter repository.RepostFilter) (int, error) {
	where, args := repostFilterClause(filter)

	var count int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reposts`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("sqlite: counting reposts: %w", err)
	}
	return count, nil
}

func repostFilterClause(filter repository.RepostFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.UserID != 0 {
		conds = append(conds, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.GameID != 0 {
		// A repost has no game of its own; it inherits the one its review
		// is about.
		conds = append(conds, "review_id IN (SELECT id FROM reviews WHERE game_id = ?)")
		args = append(args, filter.GameID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
