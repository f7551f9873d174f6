package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/model"
	"github.com/nbarreto/gamereel/internal/repository"
)

// SocialService covers the engagement edges between users, reviews, and
// games: likes, reposts, follows, and the saved-games list, plus the public
// profile read that aggregates them.
//
// Every toggle resolves races through the UNIQUE pair constraint in sqlite:
// losing an insert race comes back as ErrConflict, which just means another
// request already put the edge in place, so the toggle reports that state
// instead of failing.
type SocialService struct {
	likes   repository.LikeRepository
	reposts repository.RepostRepository
	follows repository.FollowRepository
	saved   repository.SavedGameRepository
	reviews repository.ReviewRepository
	users   repository.UserRepository
	games   GameCache
	logger  *slog.Logger
}

// GameCache is the full cache surface: single-record warm plus batch resolve.
type GameCache interface {
	GameWarmer
	GameResolver
}

func NewSocialService(
	likes repository.LikeRepository,
	reposts repository.RepostRepository,
	follows repository.FollowRepository,
	saved repository.SavedGameRepository,
	reviews repository.ReviewRepository,
	users repository.UserRepository,
	games GameCache,
	logger *slog.Logger,
) *SocialService {
	return &SocialService{
		likes:   likes,
		reposts: reposts,
		follows: follows,
		saved:   saved,
		reviews: reviews,
		users:   users,
		games:   games,
		logger:  logger,
	}
}

// ToggleLike flips the viewer's like on a review and reports the resulting
// state.
func (s *SocialService) ToggleLike(ctx context.Context, userID, reviewID int64) (liked bool, err error) {
	if _, err := s.reviews.GetReview(ctx, reviewID); err != nil {
		return false, err
	}

	exists, err := s.likes.LikeExists(ctx, userID, reviewID)
	if err != nil {
		return false, err
	}
	if exists {
		if err := s.likes.DeleteLike(ctx, userID, reviewID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				// Another request removed it first. Same end state.
				return false, nil
			}
			return false, err
		}
		return false, nil
	}

	err = s.likes.CreateLike(ctx, &model.Like{UserID: userID, ReviewID: reviewID})
	if err != nil && !errors.Is(err, apperror.ErrConflict) {
		return false, err
	}
	return true, nil
}

// ToggleRepost flips the viewer's repost of a review. Reposting your own
// review is rejected.
func (s *SocialService) ToggleRepost(ctx context.Context, userID, reviewID int64, body string) (reposted bool, err error) {
	review, err := s.reviews.GetReview(ctx, reviewID)
	if err != nil {
		return false, err
	}
	if review.UserID == userID {
		return false, apperror.ValidationFailed("review_id", "you cannot repost your own review")
	}

	exists, err := s.reposts.RepostExists(ctx, userID, reviewID)
	if err != nil {
		return false, err
	}
	if exists {
		if err := s.reposts.DeleteRepost(ctx, userID, reviewID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		return false, nil
	}

	repost := &model.Repost{UserID: userID, ReviewID: reviewID, Body: body}
	if body != "" {
		// Caption is optional; when present it follows the review rules.
		if repost.Body, _, err = normalizeContent(body, ""); err != nil {
			return false, err
		}
	}
	if err := s.reposts.CreateRepost(ctx, repost); err != nil && !errors.Is(err, apperror.ErrConflict) {
		return false, err
	}
	return true, nil
}

// ToggleFollow flips the follower→following edge. Following yourself is
// rejected.
func (s *SocialService) ToggleFollow(ctx context.Context, followerID, followingID int64) (following bool, err error) {
	if followerID == followingID {
		return false, apperror.ValidationFailed("user_id", "you cannot follow yourself")
	}
	if _, err := s.users.GetUser(ctx, followingID); err != nil {
		return false, err
	}

	exists, err := s.follows.FollowExists(ctx, followerID, followingID)
	if err != nil {
		return false, err
	}
	if exists {
		if err := s.follows.DeleteFollow(ctx, followerID, followingID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		return false, nil
	}

	err = s.follows.CreateFollow(ctx, &model.Follow{FollowerID: followerID, FollowingID: followingID})
	if err != nil && !errors.Is(err, apperror.ErrConflict) {
		return false, err
	}
	return true, nil
}

// SaveGame adds a game to the user's saved list, warming the cache first so
// an ID the catalog does not know is rejected.
func (s *SocialService) SaveGame(ctx context.Context, userID, gameID int64) error {
	if gameID <= 0 {
		return apperror.ValidationFailed("id_game", "a game id is required")
	}
	if _, err := s.games.GetGame(ctx, gameID); err != nil {
		return err
	}

	err := s.saved.CreateSavedGame(ctx, &model.SavedGame{UserID: userID, GameID: gameID})
	if err != nil && !errors.Is(err, apperror.ErrConflict) {
		return err
	}
	return nil
}

func (s *SocialService) UnsaveGame(ctx context.Context, userID, gameID int64) error {
	return s.saved.DeleteSavedGame(ctx, userID, gameID)
}

// SavedGames returns the user's saved list with game metadata embedded.
// Metadata resolution is best-effort: a game the catalog lost renders with a
// null game_info rather than dropping the row.
func (s *SocialService) SavedGames(ctx context.Context, userID int64) ([]model.SavedGame, error) {
	saved, err := s.saved.ListSavedGames(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(saved) == 0 {
		return []model.SavedGame{}, nil
	}

	ids := make([]int64, len(saved))
	for i := range saved {
		ids[i] = saved[i].GameID
	}
	games, err := s.games.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range saved {
		saved[i].GameInfo = games[saved[i].GameID]
	}
	return saved, nil
}

// SavedGamesByUsername is the public view of another user's saved list.
func (s *SocialService) SavedGamesByUsername(ctx context.Context, username string) ([]model.SavedGame, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.SavedGames(ctx, user.ID)
}

// Profile assembles the public profile for a username. viewerID is zero for
// anonymous requests, which leaves ViewerFollows false.
func (s *SocialService) Profile(ctx context.Context, username string, viewerID int64) (*model.Profile, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	reviewCount, err := s.reviews.CountReviews(ctx, repository.ReviewFilter{UserID: user.ID})
	if err != nil {
		return nil, err
	}
	followers, err := s.follows.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	viewerFollows := false
	if viewerID != 0 && viewerID != user.ID {
		viewerFollows, err = s.follows.FollowExists(ctx, viewerID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	return &model.Profile{
		User:           user,
		ReviewCount:    reviewCount,
		FollowerCount:  followers,
		FollowingCount: following,
		ViewerFollows:  viewerFollows,
	}, nil
}

func (s *SocialService) Followers(ctx context.Context, userID int64) ([]model.User, error) {
	return s.follows.ListFollowers(ctx, userID)
}

func (s *SocialService) Following(ctx context.Context, userID int64) ([]model.User, error) {
	return s.follows.ListFollowing(ctx, userID)
}
