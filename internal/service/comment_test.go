package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/model"
	"github.com/nbarreto/gamereel/internal/repository"
)

type mockComments struct {
	comments map[int64]*model.Comment
	nextID   int64
}

func newMockComments() *mockComments {
	return &mockComments{comments: map[int64]*model.Comment{}, nextID: 1}
}

func (m *mockComments) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = m.nextID
	m.nextID++
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *mockComments) GetComment(ctx context.Context, id int64) (*model.Comment, error) {
	comment, ok := m.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	copied := *comment
	return &copied, nil
}

func (m *mockComments) UpdateComment(ctx context.Context, comment *model.Comment) error {
	if _, ok := m.comments[comment.ID]; !ok {
		return apperror.NotFound("comment", comment.ID)
	}
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *mockComments) DeleteComment(ctx context.Context, id int64) error {
	if _, ok := m.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	delete(m.comments, id)
	return nil
}

func (m *mockComments) ListTopLevelComments(ctx context.Context, reviewID int64, opts repository.ListOptions) ([]model.Comment, error) {
	var out []model.Comment
	for id := int64(1); id < m.nextID; id++ {
		if c, ok := m.comments[id]; ok && c.ReviewID == reviewID && c.ParentID == nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockComments) ListReplies(ctx context.Context, parentIDs []int64) (map[int64][]model.Comment, error) {
	out := map[int64][]model.Comment{}
	for id := int64(1); id < m.nextID; id++ {
		c, ok := m.comments[id]
		if !ok || c.ParentID == nil {
			continue
		}
		for _, parentID := range parentIDs {
			if *c.ParentID == parentID {
				out[parentID] = append(out[parentID], *c)
			}
		}
	}
	return out, nil
}

func newCommentFixture() (*CommentService, *mockComments) {
	reviews := &mockFeedReviews{reviews: []model.Review{
		{ID: 1, UserID: 10, GameID: 7},
		{ID: 2, UserID: 20, GameID: 8},
	}}
	comments := newMockComments()
	return NewCommentService(comments, reviews, discardLogger()), comments
}

func TestCreateComment(t *testing.T) {
	svc, _ := newCommentFixture()

	comment, err := svc.CreateComment(context.Background(), 20, 1, nil, "nice take", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comment.ID == 0 || comment.ReviewID != 1 {
		t.Fatalf("comment not stored as expected: %+v", comment)
	}
}

func TestCreateComment_UnknownReview(t *testing.T) {
	svc, _ := newCommentFixture()

	_, err := svc.CreateComment(context.Background(), 20, 999, nil, "nice", "")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestCreateComment_ParentChecks(t *testing.T) {
	svc, _ := newCommentFixture()
	ctx := context.Background()

	parent, err := svc.CreateComment(ctx, 10, 1, nil, "top level", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reply, err := svc.CreateComment(ctx, 20, 1, &parent.ID, "a reply", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Parent on a different review.
	if _, err := svc.CreateComment(ctx, 20, 2, &parent.ID, "wrong review", ""); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected a validation error for a cross-review parent, got %v", err)
	}
	// Replying to a reply.
	if _, err := svc.CreateComment(ctx, 10, 1, &reply.ID, "too deep", ""); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected a validation error for a nested reply, got %v", err)
	}
	// Parent that does not exist.
	missing := int64(999)
	if _, err := svc.CreateComment(ctx, 10, 1, &missing, "orphan", ""); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected NotFound for a missing parent, got %v", err)
	}
}

func TestUpdateComment_OwnerOnly(t *testing.T) {
	svc, _ := newCommentFixture()
	ctx := context.Background()

	comment, err := svc.CreateComment(ctx, 20, 1, nil, "original", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.UpdateComment(ctx, 99, comment.ID, "hijacked", ""); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected Forbidden for a non-owner, got %v", err)
	}

	updated, err := svc.UpdateComment(ctx, 20, comment.ID, "edited", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Body != "edited" {
		t.Fatalf("expected the body to change, got %q", updated.Body)
	}
}

func TestDeleteComment_OwnerOnly(t *testing.T) {
	svc, comments := newCommentFixture()
	ctx := context.Background()

	comment, err := svc.CreateComment(ctx, 20, 1, nil, "to be deleted", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteComment(ctx, 99, comment.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected Forbidden for a non-owner, got %v", err)
	}
	if err := svc.DeleteComment(ctx, 20, comment.ID); err != nil {
		t.Fatalf("unexpected error for the owner: %v", err)
	}
	if len(comments.comments) != 0 {
		t.Fatal("expected the comment to be gone")
	}
}

func TestListByReview_AttachesReplies(t *testing.T) {
	svc, _ := newCommentFixture()
	ctx := context.Background()

	first, err := svc.CreateComment(ctx, 10, 1, nil, "first", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.CreateComment(ctx, 20, 1, nil, "second", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.CreateComment(ctx, 20, 1, &first.ID, "reply to first", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	thread, err := svc.ListByReview(ctx, 1, repository.ListOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(thread) != 2 {
		t.Fatalf("expected 2 top-level comments, got %d", len(thread))
	}
	if len(thread[0].Replies) != 1 || thread[0].Replies[0].Body != "reply to first" {
		t.Fatalf("expected the reply attached to the first comment, got %+v", thread[0].Replies)
	}
	if len(thread[1].Replies) != 0 {
		t.Fatal("the second comment must have no replies")
	}
}
