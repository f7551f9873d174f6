package sqlite

import (
	"context"
	"fmt"

	"github.com/nbarreto/gamereel/internal/repository"
)

var _ repository.EngagementRepository = (*DB)(nil)

// The engagement reads exist so feed assembly costs a fixed number of
// queries per page regardless of page size: one grouped COUNT per table plus
// one membership query per viewer flag, all keyed by the page's review IDs.

func (db *DB) LikeCounts(ctx context.Context, reviewIDs []int64) (map[int64]int, error) {
	return db.groupedCounts(ctx, "likes", reviewIDs)
}

func (db *DB) RepostCounts(ctx context.Context, reviewIDs []int64) (map[int64]int, error) {
	return db.groupedCounts(ctx, "reposts", reviewIDs)
}

func (db *DB) CommentCounts(ctx context.Context, reviewIDs []int64) (map[int64]int, error) {
	return db.groupedCounts(ctx, "comments", reviewIDs)
}

func (db *DB) LikedByUser(ctx context.Context, userID int64, reviewIDs []int64) (map[int64]bool, error) {
	return db.membership(ctx, "likes", userID, reviewIDs)
}

func (db *DB) RepostedByUser(ctx context.Context, userID int64, reviewIDs []int64) (map[int64]bool, error) {
	return db.membership(ctx, "reposts", userID, reviewIDs)
}

// groupedCounts runs one GROUP BY over the given table. Review IDs with no
// rows are absent from the map; callers read that as zero.
func (db *DB) groupedCounts(ctx context.Context, table string, reviewIDs []int64) (map[int64]int, error) {
	result := make(map[int64]int, len(reviewIDs))
	if len(reviewIDs) == 0 {
		return result, nil
	}

	// table is one of three package-internal constants, never user input.
	rows, err := db.conn.QueryContext(ctx,
		`SELECT review_id, COUNT(*) FROM `+table+`
		 WHERE review_id IN (`+placeholders(len(reviewIDs))+`)
		 GROUP BY review_id`,
		int64Args(reviewIDs)...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			reviewID int64
			count    int
		)
		if err := rows.Scan(&reviewID, &count); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s count: %w", table, err)
		}
		result[reviewID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating %s counts: %w", table, err)
	}
	return result, nil
}

func (db *DB) membership(ctx context.Context, table string, userID int64, reviewIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(reviewIDs))
	if len(reviewIDs) == 0 || userID == 0 {
		return result, nil
	}

	args := append([]any{userID}, int64Args(reviewIDs)...)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT review_id FROM `+table+`
		 WHERE user_id = ? AND review_id IN (`+placeholders(len(reviewIDs))+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking %s membership: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var reviewID int64
		if err := rows.Scan(&reviewID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s membership: %w", table, err)
		}
		result[reviewID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating %s membership: %w", table, err)
	}
	return result, nil
}
