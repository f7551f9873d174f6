package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/model"
)

func TestLikes(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	ana := seedUser(t, db, "ana")
	bruno := seedUser(t, db, "bruno")
	seedGame(t, db, 7)
	review := seedReview(t, db, ana.ID, 7, "original")

	if err := db.CreateLike(ctx, &model.Like{UserID: bruno.ID, ReviewID: review.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := db.CreateLike(ctx, &model.Like{UserID: bruno.ID, ReviewID: review.ID})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected Conflict for a duplicate like, got %v", err)
	}

	exists, err := db.LikeExists(ctx, bruno.ID, review.ID)
	if err != nil || !exists {
		t.Fatalf("expected the like to exist, got %v / %v", exists, err)
	}

	if err := db.DeleteLike(ctx, bruno.ID, review.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.DeleteLike(ctx, bruno.ID, review.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected NotFound for a second delete, got %v", err)
	}
}

func TestFollows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	ana := seedUser(t, db, "ana")
	bruno := seedUser(t, db, "bruno")
	carla := seedUser(t, db, "carla")

	if err := db.CreateFollow(ctx, &model.Follow{FollowerID: bruno.ID, FollowingID: ana.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.CreateFollow(ctx, &model.Follow{FollowerID: carla.ID, FollowingID: ana.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := db.CreateFollow(ctx, &model.Follow{FollowerID: bruno.ID, FollowingID: ana.ID})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected Conflict for a duplicate follow, got %v", err)
	}

	followers, err := db.CountFollowers(ctx, ana.ID)
	if err != nil || followers != 2 {
		t.Fatalf("expected 2 followers, got %d / %v", followers, err)
	}
	following, err := db.CountFollowing(ctx, bruno.ID)
	if err != nil || following != 1 {
		t.Fatalf("expected 1 following, got %d / %v", following, err)
	}

	list, err := db.ListFollowers(ctx, ana.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("expected 2 follower rows, got %d / %v", len(list), err)
	}
	names := map[string]bool{}
	for _, u := range list {
		names[u.Username] = true
	}
	if !names["bruno"] || !names["carla"] {
		t.Fatalf("unexpected follower set %v", names)
	}

	mine, err := db.ListFollowing(ctx, bruno.ID)
	if err != nil || len(mine) != 1 || mine[0].Username != "ana" {
		t.Fatalf("unexpected following list %v / %v", mine, err)
	}

	if err := db.DeleteFollow(ctx, bruno.ID, ana.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists, _ := db.FollowExists(ctx, bruno.ID, ana.ID); exists {
		t.Fatal("expected the follow to be gone")
	}
}

func TestSavedGames(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	ana := seedUser(t, db, "ana")
	seedGame(t, db, 7)
	seedGame(t, db, 8)

	if err := db.CreateSavedGame(ctx, &model.SavedGame{UserID: ana.ID, GameID: 7}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.CreateSavedGame(ctx, &model.SavedGame{UserID: ana.ID, GameID: 8}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := db.CreateSavedGame(ctx, &model.SavedGame{UserID: ana.ID, GameID: 7})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected Conflict for a duplicate save, got %v", err)
	}

	saved, err := db.ListSavedGames(ctx, ana.ID)
	if err != nil || len(saved) != 2 {
		t.Fatalf("expected 2 saved games, got %d / %v", len(saved), err)
	}

	if err := db.DeleteSavedGame(ctx, ana.ID, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.DeleteSavedGame(ctx, ana.ID, 7); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected NotFound for a second delete, got %v", err)
	}
}

func TestEngagementCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	ana := seedUser(t, db, "ana")
	bruno := seedUser(t, db, "bruno")
	carla := seedUser(t, db, "carla")
	seedGame(t, db, 7)
	r1 := seedReview(t, db, ana.ID, 7, "one")
	r2 := seedReview(t, db, bruno.ID, 7, "two")

	for _, userID := range []int64{bruno.ID, carla.ID} {
		if err := db.CreateLike(ctx, &model.Like{UserID: userID, ReviewID: r1.ID}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := db.CreateRepost(ctx, &model.Repost{UserID: carla.ID, ReviewID: r1.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.CreateComment(ctx, &model.Comment{UserID: carla.ID, ReviewID: r2.ID, Body: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := []int64{r1.ID, r2.ID}

	likes, err := db.LikeCounts(ctx, ids)
	if err != nil || likes[r1.ID] != 2 || likes[r2.ID] != 0 {
		t.Fatalf("unexpected like counts %v / %v", likes, err)
	}
	reposts, err := db.RepostCounts(ctx, ids)
	if err != nil || reposts[r1.ID] != 1 {
		t.Fatalf("unexpected repost counts %v / %v", reposts, err)
	}
	comments, err := db.CommentCounts(ctx, ids)
	if err != nil || comments[r2.ID] != 1 {
		t.Fatalf("unexpected comment counts %v / %v", comments, err)
	}

	liked, err := db.LikedByUser(ctx, carla.ID, ids)
	if err != nil || !liked[r1.ID] || liked[r2.ID] {
		t.Fatalf("unexpected liked flags %v / %v", liked, err)
	}
	reposted, err := db.RepostedByUser(ctx, carla.ID, ids)
	if err != nil || !reposted[r1.ID] {
		t.Fatalf("unexpected reposted flags %v / %v", reposted, err)
	}

	// Anonymous viewers get empty flag maps.
	anon, err := db.LikedByUser(ctx, 0, ids)
	if err != nil || len(anon) != 0 {
		t.Fatalf("expected no flags for an anonymous viewer, got %v / %v", anon, err)
	}
}
