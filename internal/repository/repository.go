// Package repository defines the storage interfaces consumed by the service
// layer. The sqlite subpackage provides the real implementation; tests
// substitute in-memory mocks.
//
// Method names carry the entity (CreateReview, not Create) because a single
// sqlite.DB implements every interface here — the server hands the same
// value to each service under a narrower type.
package repository

import (
	"context"
	"time"

	"github.com/nbarreto/gamereel/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// ReviewFilter narrows review queries. A zero field means "any".
type ReviewFilter struct {
	GameID int64
	UserID int64
}

// RepostFilter narrows repost queries. A zero field means "any". GameID
// filters through the referenced review — a repost belongs to the game its
// review is about.
type RepostFilter struct {
	UserID int64
	GameID int64
}

// GameReviewCount is one row of the most-reviewed ranking: a game, how many
// reviews it drew in the window, and the newest of them.
type GameReviewCount struct {
	GameID         int64
	ReviewCount    int
	LatestReviewID int64
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// GetUserBatch returns the users for the given IDs; missing IDs are
	// absent from the map.
	GetUserBatch(ctx context.Context, ids []int64) (map[int64]model.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdatePhoto(ctx context.Context, id int64, photoURL string) error
}

// GameRepository is the persistent game cache, keyed by catalog ID.
// UpsertGame is idempotent: it overwrites the record and bumps
// last_refreshed. There is no eviction — catalog IDs are a small,
// slow-growing universe.
type GameRepository interface {
	GetGame(ctx context.Context, id int64) (*model.GameRecord, error)
	GetGameBatch(ctx context.Context, ids []int64) (map[int64]*model.GameRecord, error)
	UpsertGame(ctx context.Context, record *model.GameRecord) error
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, review *model.Review) error
	GetReview(ctx context.Context, id int64) (*model.Review, error)
	GetReviewBatch(ctx context.Context, ids []int64) (map[int64]model.Review, error)
	// ListReviews returns reviews newest-first.
	ListReviews(ctx context.Context, filter ReviewFilter, opts ListOptions) ([]model.Review, error)
	CountReviews(ctx context.Context, filter ReviewFilter) (int, error)
	// DeleteReview cascades to likes, comments, and reposts of the review.
	DeleteReview(ctx context.Context, id int64) error
	// MostReviewedGames groups reviews created since the given time by
	// game, most-reviewed first.
	MostReviewedGames(ctx context.Context, since time.Time, limit int) ([]GameReviewCount, error)
}

type RepostRepository interface {
	// CreateRepost returns apperror.ErrConflict when the (user, review)
	// pair already exists.
	CreateRepost(ctx context.Context, repost *model.Repost) error
	// DeleteRepost removes the pair; apperror.ErrNotFound when there is none.
	DeleteRepost(ctx context.Context, userID, reviewID int64) error
	RepostExists(ctx context.Context, userID, reviewID int64) (bool, error)
	// ListRecentReposts returns reposts newest-first.
	ListRecentReposts(ctx context.Context, filter RepostFilter, opts ListOptions) ([]model.Repost, error)
	CountReposts(ctx context.Context, filter RepostFilter) (int, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id int64) (*model.Comment, error)
	UpdateComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, id int64) error
	ListTopLevelComments(ctx context.Context, reviewID int64, opts ListOptions) ([]model.Comment, error)
	// ListReplies loads one level of children for the given parents,
	// grouped by parent ID.
	ListReplies(ctx context.Context, parentIDs []int64) (map[int64][]model.Comment, error)
}

type LikeRepository interface {
	// CreateLike returns apperror.ErrConflict when the pair already exists.
	CreateLike(ctx context.Context, like *model.Like) error
	DeleteLike(ctx context.Context, userID, reviewID int64) error
	LikeExists(ctx context.Context, userID, reviewID int64) (bool, error)
}

type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *model.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID int64) error
	FollowExists(ctx context.Context, followerID, followingID int64) (bool, error)
	CountFollowers(ctx context.Context, userID int64) (int, error)
	CountFollowing(ctx context.Context, userID int64) (int, error)
	ListFollowers(ctx context.Context, userID int64) ([]model.User, error)
	ListFollowing(ctx context.Context, userID int64) ([]model.User, error)
}

type SavedGameRepository interface {
	CreateSavedGame(ctx context.Context, saved *model.SavedGame) error
	DeleteSavedGame(ctx context.Context, userID, gameID int64) error
	ListSavedGames(ctx context.Context, userID int64) ([]model.SavedGame, error)
}

// EngagementRepository batch-loads the per-review counts and viewer flags a
// feed page needs. Everything is keyed by review-ID set so one page costs a
// fixed number of grouped queries instead of one query per item.
type EngagementRepository interface {
	LikeCounts(ctx context.Context, reviewIDs []int64) (map[int64]int, error)
	RepostCounts(ctx context.Context, reviewIDs []int64) (map[int64]int, error)
	CommentCounts(ctx context.Context, reviewIDs []int64) (map[int64]int, error)
	LikedByUser(ctx context.Context, userID int64, reviewIDs []int64) (map[int64]bool, error)
	RepostedByUser(ctx context.Context, userID int64, reviewIDs []int64) (map[int64]bool, error)
}
