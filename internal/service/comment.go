package service

import (
	"context"
	"log/slog"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/model"
	"github.com/nbarreto/gamereel/internal/repository"
)

// CommentService handles the comment thread under a review: top-level
// comments plus one level of replies.
type CommentService struct {
	comments repository.CommentRepository
	reviews  repository.ReviewRepository
	logger   *slog.Logger
}

func NewCommentService(comments repository.CommentRepository, reviews repository.ReviewRepository, logger *slog.Logger) *CommentService {
	return &CommentService{comments: comments, reviews: reviews, logger: logger}
}

// CreateComment validates and stores a comment. A parent, when given, must be
// a top-level comment on the same review — the thread is one level deep, so a
// reply cannot itself take replies.
func (s *CommentService) CreateComment(ctx context.Context, userID, reviewID int64, parentID *int64, body, gifURL string) (*model.Comment, error) {
	body, gifURL, err := normalizeContent(body, gifURL)
	if err != nil {
		return nil, err
	}

	if _, err := s.reviews.GetReview(ctx, reviewID); err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := s.comments.GetComment(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.ReviewID != reviewID {
			return nil, apperror.ValidationFailed("parent_id", "parent comment belongs to a different review")
		}
		if parent.ParentID != nil {
			return nil, apperror.ValidationFailed("parent_id", "replies cannot be nested further")
		}
	}

	comment := &model.Comment{
		UserID:   userID,
		ReviewID: reviewID,
		ParentID: parentID,
		Body:     body,
		GIFURL:   gifURL,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	s.logger.Info("comment created", "comment_id", comment.ID, "review_id", reviewID, "user_id", userID)
	return comment, nil
}

// UpdateComment replaces the text/GIF of a comment owned by userID.
func (s *CommentService) UpdateComment(ctx context.Context, userID, commentID int64, body, gifURL string) (*model.Comment, error) {
	body, gifURL, err := normalizeContent(body, gifURL)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, apperror.Forbidden("you can only edit your own comments")
	}

	comment.Body = body
	comment.GIFURL = gifURL
	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID int64) error {
	comment, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return apperror.Forbidden("you can only delete your own comments")
	}
	return s.comments.DeleteComment(ctx, commentID)
}

// ListByReview returns the review's top-level comments, oldest first, each
// carrying its replies. Replies load in one grouped query over the page's
// parent IDs.
func (s *CommentService) ListByReview(ctx context.Context, reviewID int64, opts repository.ListOptions) ([]model.Comment, error) {
	if _, err := s.reviews.GetReview(ctx, reviewID); err != nil {
		return nil, err
	}

	parents, err := s.comments.ListTopLevelComments(ctx, reviewID, opts)
	if err != nil {
		return nil, err
	}
	if len(parents) == 0 {
		return []model.Comment{}, nil
	}

	parentIDs := make([]int64, len(parents))
	for i := range parents {
		parentIDs[i] = parents[i].ID
	}
	replies, err := s.comments.ListReplies(ctx, parentIDs)
	if err != nil {
		return nil, err
	}
	for i := range parents {
		parents[i].Replies = replies[parents[i].ID]
	}
	return parents, nil
}
