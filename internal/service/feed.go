package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/model"
	"github.com/nbarreto/gamereel/internal/repository"
)

const (
	defaultFeedPageSize = 10
	maxFeedPageSize     = 50
	maxFeedPage         = 100

	mostReviewedWindow = 7 * 24 * time.Hour
	mostReviewedLimit  = 10
)

// GameResolver is the slice of the game cache the feed needs.
type GameResolver interface {
	Resolve(ctx context.Context, ids []int64) (map[int64]*model.GameRecord, error)
}

// FeedService assembles paginated feed pages out of reviews and reposts.
//
// A page is built in two phases: first the candidate streams are merged and
// sliced down to one page of IDs, then every lookup the page needs — authors,
// game metadata, engagement counts, viewer flags — is batch-loaded once for
// the whole slice. Nothing in the hot path issues a query per item.
type FeedService struct {
	reviews    repository.ReviewRepository
	reposts    repository.RepostRepository
	users      repository.UserRepository
	engagement repository.EngagementRepository
	games      GameResolver
	logger     *slog.Logger
	now        func() time.Time
}

func NewFeedService(
	reviews repository.ReviewRepository,
	reposts repository.RepostRepository,
	users repository.UserRepository,
	engagement repository.EngagementRepository,
	games GameResolver,
	logger *slog.Logger,
) *FeedService {
	return &FeedService{
		reviews:    reviews,
		reposts:    reposts,
		users:      users,
		engagement: engagement,
		games:      games,
		logger:     logger,
		now:        time.Now,
	}
}

// feedCandidate is a merged-stream entry before hydration.
type feedCandidate struct {
	itemType model.FeedItemType
	review   *model.Review
	repost   *model.Repost
}

func (c feedCandidate) sortKey() (created int64, id int64) {
	if c.itemType == model.FeedItemReview {
		return c.review.CreatedAt.UnixNano(), c.review.ID
	}
	return c.repost.CreatedAt.UnixNano(), c.repost.ID
}

// GetFeed returns one page of the feed described by the query.
func (s *FeedService) GetFeed(ctx context.Context, query model.FeedQuery) (*model.FeedPage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	// The per-stream fetch grows with the page index, so the index is
	// capped the same way the page size is.
	if page > maxFeedPage {
		page = maxFeedPage
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = defaultFeedPageSize
	}
	if pageSize > maxFeedPageSize {
		pageSize = maxFeedPageSize
	}

	var (
		reviewFilter   repository.ReviewFilter
		repostFilter   repository.RepostFilter
		includeReposts bool
	)
	switch query.Scope {
	case model.ScopeGame:
		if query.GameID <= 0 {
			return nil, apperror.ValidationFailed("id_game", "a game id is required for the game feed")
		}
		reviewFilter.GameID = query.GameID
	case model.ScopeUser:
		// Reviews only. The user's reposts surface through the global
		// scope's user filter, not here.
		if query.UserID <= 0 {
			return nil, apperror.ValidationFailed("id_user", "a user id is required for the user feed")
		}
		reviewFilter.UserID = query.UserID
	case model.ScopeGlobal:
		if query.GameID > 0 {
			reviewFilter.GameID = query.GameID
			repostFilter.GameID = query.GameID
		}
		if query.UserID > 0 {
			reviewFilter.UserID = query.UserID
			repostFilter.UserID = query.UserID
		}
		includeReposts = true
	default:
		return nil, apperror.ValidationFailed("busca", "unknown feed scope")
	}

	// Each stream is already newest-first, so the first page*pageSize
	// entries of each are enough to cover the requested page after the
	// merge.
	fetchLimit := page * pageSize

	reviews, err := s.reviews.ListReviews(ctx, reviewFilter, repository.ListOptions{Limit: fetchLimit})
	if err != nil {
		return nil, err
	}
	total, err := s.reviews.CountReviews(ctx, reviewFilter)
	if err != nil {
		return nil, err
	}

	var reposts []model.Repost
	if includeReposts {
		reposts, err = s.reposts.ListRecentReposts(ctx, repostFilter, repository.ListOptions{Limit: fetchLimit})
		if err != nil {
			return nil, err
		}
		repostTotal, err := s.reposts.CountReposts(ctx, repostFilter)
		if err != nil {
			return nil, err
		}
		total += repostTotal
	}

	candidates := make([]feedCandidate, 0, len(reviews)+len(reposts))
	for i := range reviews {
		candidates = append(candidates, feedCandidate{itemType: model.FeedItemReview, review: &reviews[i]})
	}
	for i := range reposts {
		candidates = append(candidates, feedCandidate{itemType: model.FeedItemRepost, repost: &reposts[i]})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ci, ii := candidates[i].sortKey()
		cj, ij := candidates[j].sortKey()
		if ci != cj {
			return ci > cj
		}
		if candidates[i].itemType != candidates[j].itemType {
			return candidates[i].itemType == model.FeedItemReview
		}
		return ii > ij
	})

	offset := (page - 1) * pageSize
	if offset > len(candidates) {
		offset = len(candidates)
	}
	end := offset + pageSize
	if end > len(candidates) {
		end = len(candidates)
	}
	pageSlice := candidates[offset:end]

	items, err := s.hydrate(ctx, pageSlice, query.ViewerID)
	if err != nil {
		return nil, err
	}

	pages := (total + pageSize - 1) / pageSize
	return &model.FeedPage{
		Items: items,
		Pagination: model.Pagination{
			Total:       total,
			Pages:       pages,
			CurrentPage: page,
			PerPage:     pageSize,
		},
	}, nil
}

// MostReviewedThisWeek ranks games by review volume over the trailing seven
// days. Each entry carries the game's cached metadata and its newest review,
// hydrated like a feed item so the viewer-relative flags are populated.
func (s *FeedService) MostReviewedThisWeek(ctx context.Context, viewerID int64) ([]model.MostReviewedGame, error) {
	since := s.now().UTC().Add(-mostReviewedWindow)
	rows, err := s.reviews.MostReviewedGames(ctx, since, mostReviewedLimit)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []model.MostReviewedGame{}, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.LatestReviewID)
	}
	latest, err := s.reviews.GetReviewBatch(ctx, ids)
	if err != nil {
		return nil, err
	}

	var (
		kept       []repository.GameReviewCount
		candidates []feedCandidate
	)
	for _, row := range rows {
		review, ok := latest[row.LatestReviewID]
		if !ok {
			// Deleted between the ranking query and the batch load.
			s.logger.Warn("skipping ranked game with a vanished review",
				"game_id", row.GameID, "review_id", row.LatestReviewID)
			continue
		}
		kept = append(kept, row)
		candidates = append(candidates, feedCandidate{itemType: model.FeedItemReview, review: &review})
	}

	items, err := s.hydrate(ctx, candidates, viewerID)
	if err != nil {
		return nil, err
	}

	ranking := make([]model.MostReviewedGame, 0, len(kept))
	for i, row := range kept {
		review := items[i].Review
		ranking = append(ranking, model.MostReviewedGame{
			Game:         review.GameInfo,
			ReviewCount:  row.ReviewCount,
			LatestReview: review,
		})
	}
	return ranking, nil
}

// hydrate turns a slice of candidates into fully-populated feed items using
// one batch lookup per concern.
func (s *FeedService) hydrate(ctx context.Context, candidates []feedCandidate, viewerID int64) ([]model.FeedItem, error) {
	if len(candidates) == 0 {
		return []model.FeedItem{}, nil
	}

	// Reposts embed the review they point at, so those reviews have to be
	// loaded before we know the full set of games and authors involved.
	var repostedIDs []int64
	for _, c := range candidates {
		if c.itemType == model.FeedItemRepost {
			repostedIDs = append(repostedIDs, c.repost.ReviewID)
		}
	}
	repostedReviews := map[int64]model.Review{}
	if len(repostedIDs) > 0 {
		var err error
		repostedReviews, err = s.reviews.GetReviewBatch(ctx, repostedIDs)
		if err != nil {
			return nil, err
		}
	}

	var (
		reviewIDs []int64
		gameIDs   []int64
		userIDs   []int64
	)
	collectReview := func(r *model.Review) {
		reviewIDs = append(reviewIDs, r.ID)
		gameIDs = append(gameIDs, r.GameID)
		userIDs = append(userIDs, r.UserID)
	}
	for _, c := range candidates {
		switch c.itemType {
		case model.FeedItemReview:
			collectReview(c.review)
		case model.FeedItemRepost:
			userIDs = append(userIDs, c.repost.UserID)
			if review, ok := repostedReviews[c.repost.ReviewID]; ok {
				collectReview(&review)
			}
		}
	}

	games, err := s.games.Resolve(ctx, gameIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.users.GetUserBatch(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	likeCounts, err := s.engagement.LikeCounts(ctx, reviewIDs)
	if err != nil {
		return nil, err
	}
	repostCounts, err := s.engagement.RepostCounts(ctx, reviewIDs)
	if err != nil {
		return nil, err
	}
	commentCounts, err := s.engagement.CommentCounts(ctx, reviewIDs)
	if err != nil {
		return nil, err
	}
	liked, err := s.engagement.LikedByUser(ctx, viewerID, reviewIDs)
	if err != nil {
		return nil, err
	}
	reposted, err := s.engagement.RepostedByUser(ctx, viewerID, reviewIDs)
	if err != nil {
		return nil, err
	}

	buildReviewItem := func(r *model.Review) *model.ReviewItem {
		return &model.ReviewItem{
			FeedType:        model.FeedItemReview,
			ID:              r.ID,
			UserID:          r.UserID,
			Username:        users[r.UserID].Username,
			GameID:          r.GameID,
			Body:            r.Body,
			GIFURL:          r.GIFURL,
			CreatedAt:       r.CreatedAt,
			GameInfo:        games[r.GameID],
			CommentCount:    commentCounts[r.ID],
			LikesCount:      likeCounts[r.ID],
			RepostsCount:    repostCounts[r.ID],
			UserHasLiked:    liked[r.ID],
			UserHasReposted: reposted[r.ID],
		}
	}

	items := make([]model.FeedItem, 0, len(candidates))
	for _, c := range candidates {
		switch c.itemType {
		case model.FeedItemReview:
			item := buildReviewItem(c.review)
			items = append(items, model.FeedItem{
				Type:    model.FeedItemReview,
				SortKey: c.review.CreatedAt,
				Review:  item,
			})
		case model.FeedItemRepost:
			review, ok := repostedReviews[c.repost.ReviewID]
			if !ok {
				// The review vanished between the list query and the
				// batch load. Drop the repost rather than render a husk.
				s.logger.Warn("skipping repost of a missing review",
					"repost_id", c.repost.ID, "review_id", c.repost.ReviewID)
				continue
			}
			items = append(items, model.FeedItem{
				Type:    model.FeedItemRepost,
				SortKey: c.repost.CreatedAt,
				Repost: &model.RepostItem{
					FeedType:  model.FeedItemRepost,
					ID:        c.repost.ID,
					UserID:    c.repost.UserID,
					Username:  users[c.repost.UserID].Username,
					Body:      c.repost.Body,
					CreatedAt: c.repost.CreatedAt,
					Review:    buildReviewItem(&review),
				},
			})
		}
	}
	return items, nil
}
