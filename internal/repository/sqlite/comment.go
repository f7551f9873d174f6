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

var _ repository.CommentRepository = (*DB)(nil)

// commentColumns joins the author name so reads never need a second lookup
// per comment.
const commentSelect = `
	SELECT c.id, c.user_id, u.username, c.review_id, c.parent_id,
	       c.body, c.gif_url, c.created_at
	FROM comments c
	JOIN users u ON u.id = c.user_id`

func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	now := time.Now().UTC()
	comment.CreatedAt = now

	var parentID any
	if comment.ParentID != nil {
		parentID = *comment.ParentID
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (user_id, review_id, parent_id, body, gif_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		comment.UserID, comment.ReviewID, parentID, comment.Body, comment.GIFURL, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new comment id: %w", err)
	}
	comment.ID = id
	return nil
}

func (db *DB) GetComment(ctx context.Context, id int64) (*model.Comment, error) {
	comment, err := scanComment(db.conn.QueryRowContext(ctx,
		commentSelect+` WHERE c.id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %d: %w", id, err)
	}
	return comment, nil
}

// UpdateComment rewrites the body and GIF of an existing comment. Authorship
// and identity fields never change.
func (db *DB) UpdateComment(ctx context.Context, comment *model.Comment) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE comments SET body = ?, gif_url = ? WHERE id = ?`,
		comment.Body, comment.GIFURL, comment.ID)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %d: %w", comment.ID, err)
	}
	return notFoundIfZero(res, "comment", comment.ID)
}

func (db *DB) DeleteComment(ctx context.Context, id int64) error {
	// Replies reference their parent; detach them first so the FK holds.
	if _, err := db.conn.ExecContext(ctx,
		`UPDATE comments SET parent_id = NULL WHERE parent_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: detaching replies of comment %d: %w", id, err)
	}

	res, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %d: %w", id, err)
	}
	return notFoundIfZero(res, "comment", id)
}

func (db *DB) ListTopLevelComments(ctx context.Context, reviewID int64, opts repository.ListOptions) ([]model.Comment, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 30
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.QueryContext(ctx,
		commentSelect+`
		 WHERE c.review_id = ? AND c.parent_id IS NULL
		 ORDER BY c.created_at ASC, c.id ASC
		 LIMIT ? OFFSET ?`, reviewID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for review %d: %w", reviewID, err)
	}
	defer rows.Close()

	comments, err := collectComments(rows)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ListReplies loads the direct children of the given parents in one indexed
// query, grouped by parent. Only one level — deeper descendants are never
// materialized.
func (db *DB) ListReplies(ctx context.Context, parentIDs []int64) (map[int64][]model.Comment, error) {
	result := make(map[int64][]model.Comment, len(parentIDs))
	if len(parentIDs) == 0 {
		return result, nil
	}

	rows, err := db.conn.QueryContext(ctx,
		commentSelect+`
		 WHERE c.parent_id IN (`+placeholders(len(parentIDs))+`)
		 ORDER BY c.created_at ASC, c.id ASC`,
		int64Args(parentIDs)...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing replies: %w", err)
	}
	defer rows.Close()

	replies, err := collectComments(rows)
	if err != nil {
		return nil, err
	}
	for _, reply := range replies {
		result[*reply.ParentID] = append(result[*reply.ParentID], reply)
	}
	return result, nil
}

func scanComment(s scanner) (*model.Comment, error) {
	var (
		comment  model.Comment
		parentID sql.NullInt64
	)
	err := s.Scan(&comment.ID, &comment.UserID, &comment.Username,
		&comment.ReviewID, &parentID, &comment.Body, &comment.GIFURL,
		&comment.CreatedAt)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		comment.ParentID = &parentID.Int64
	}
	return &comment, nil
}

func collectComments(rows *sql.Rows) ([]model.Comment, error) {
	var comments []model.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, *comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}
