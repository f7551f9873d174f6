package service

import (
	"context"
	"html"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/model"
	"github.com/nbarreto/gamereel/internal/repository"
)

const maxBodyLength = 255

// GameWarmer is the single-record slice of the game cache used when a write
// references a game: the record has to exist upstream before we accept it.
type GameWarmer interface {
	GetGame(ctx context.Context, id int64) (*model.GameRecord, error)
}

// ReviewService handles posting and deleting reviews.
type ReviewService struct {
	reviews repository.ReviewRepository
	games   GameWarmer
	logger  *slog.Logger
}

func NewReviewService(reviews repository.ReviewRepository, games GameWarmer, logger *slog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, games: games, logger: logger}
}

// CreateReview validates and stores a review. The referenced game is pulled
// through the cache first, so an ID the catalog does not know is rejected
// with NotFound instead of producing a review nobody can render.
func (s *ReviewService) CreateReview(ctx context.Context, userID, gameID int64, body, gifURL string) (*model.Review, error) {
	if gameID <= 0 {
		return nil, apperror.ValidationFailed("id_game", "a game id is required")
	}
	body, gifURL, err := normalizeContent(body, gifURL)
	if err != nil {
		return nil, err
	}

	if _, err := s.games.GetGame(ctx, gameID); err != nil {
		return nil, err
	}

	review := &model.Review{
		UserID: userID,
		GameID: gameID,
		Body:   body,
		GIFURL: gifURL,
	}
	if err := s.reviews.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	s.logger.Info("review created", "review_id", review.ID, "user_id", userID, "game_id", gameID)
	return review, nil
}

// DeleteReview removes a review owned by userID. Likes, comments, and
// reposts of the review go with it.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID int64) error {
	review, err := s.reviews.GetReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return apperror.Forbidden("you can only delete your own reviews")
	}
	return s.reviews.DeleteReview(ctx, reviewID)
}

// normalizeContent applies the shared text/GIF rules used by reviews,
// comments, and repost captions: at least one of the two must be present,
// text is trimmed, capped at 255 characters, and HTML-escaped, and a GIF has
// to be an https URL on a Giphy host.
func normalizeContent(body, gifURL string) (string, string, error) {
	body = strings.TrimSpace(body)
	gifURL = strings.TrimSpace(gifURL)

	if body == "" && gifURL == "" {
		return "", "", apperror.ValidationFailed("comment", "either text or a gif is required")
	}
	if utf8.RuneCountInString(body) > maxBodyLength {
		return "", "", apperror.ValidationFailed("comment", "text must be at most 255 characters")
	}
	if gifURL != "" {
		if err := validateGIFURL(gifURL); err != nil {
			return "", "", err
		}
	}
	return html.EscapeString(body), gifURL, nil
}

func validateGIFURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme != "https" || parsed.Host == "" {
		return apperror.ValidationFailed("gif_url", "gif must be an https url")
	}
	host := strings.ToLower(parsed.Hostname())
	if host != "giphy.com" && !strings.HasSuffix(host, ".giphy.com") {
		return apperror.ValidationFailed("gif_url", "gif must be hosted on giphy")
	}
	return nil
}
