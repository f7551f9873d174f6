package model

import (
	"encoding/json"
	"time"
)

// FeedItemType discriminates the two entity streams a feed can carry.
type FeedItemType string

const (
	FeedItemReview FeedItemType = "review"
	FeedItemRepost FeedItemType = "repost"
)

// ReviewItem is a review as it appears inside a feed page: the review row
// plus its author name, warmed game record, engagement counts, and the
// viewer-relative flags.
type ReviewItem struct {
	FeedType        FeedItemType `json:"feed_type"`
	ID              int64        `json:"id"`
	UserID          int64        `json:"user_id"`
	Username        string       `json:"username"`
	GameID          int64        `json:"id_game"`
	Body            string       `json:"comment,omitempty"`
	GIFURL          string       `json:"gif_url,omitempty"`
	CreatedAt       time.Time    `json:"date_created"`
	GameInfo        *GameRecord  `json:"game_info,omitempty"` // nil when the catalog had nothing for us
	CommentCount    int          `json:"comment_count"`
	LikesCount      int          `json:"likes_count"`
	RepostsCount    int          `json:"reposts_count"`
	UserHasLiked    bool         `json:"user_has_liked"`
	UserHasReposted bool         `json:"user_has_reposted"`
}

// RepostItem wraps the underlying review with the reposter's identity and
// optional added text.
type RepostItem struct {
	FeedType  FeedItemType `json:"feed_type"`
	ID        int64        `json:"id"`
	UserID    int64        `json:"user_id"`
	Username  string       `json:"username"`
	Body      string       `json:"comment,omitempty"`
	CreatedAt time.Time    `json:"date_created"`
	Review    *ReviewItem  `json:"review"`
}

// FeedItem is the tagged union of the two variants. Exactly one of Review
// and Repost is set, matching Type. SortKey orders the merged feed and is
// never serialized.
type FeedItem struct {
	Type    FeedItemType
	SortKey time.Time
	Review  *ReviewItem
	Repost  *RepostItem
}

// MarshalJSON flattens the item to its variant payload, so the wire shape
// is a review-shaped or repost-shaped object distinguished by feed_type.
func (it FeedItem) MarshalJSON() ([]byte, error) {
	if it.Type == FeedItemRepost {
		return json.Marshal(it.Repost)
	}
	return json.Marshal(it.Review)
}

// Pagination is the metadata block attached to every feed page.
type Pagination struct {
	Total       int `json:"total"`
	Pages       int `json:"pages"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
}

// FeedPage is one page of the merged feed.
type FeedPage struct {
	Items      []FeedItem `json:"comments"`
	Pagination Pagination `json:"pagination"`
}

// MostReviewedGame is one entry of the weekly most-reviewed ranking: a
// game, how many reviews it drew in the window, and the newest of them
// hydrated like a feed item.
type MostReviewedGame struct {
	Game         *GameRecord `json:"game"`
	ReviewCount  int         `json:"review_count"`
	LatestReview *ReviewItem `json:"latest_review,omitempty"`
}

// FeedScope selects which entities a feed query covers.
type FeedScope string

const (
	// ScopeGame: all reviews for one game.
	ScopeGame FeedScope = "game"
	// ScopeUser: all reviews authored by one user.
	ScopeUser FeedScope = "user"
	// ScopeGlobal: the home timeline — every review and repost — or the
	// game+user intersection when both IDs are set.
	ScopeGlobal FeedScope = "ambos"
)

// FeedQuery is the normalized descriptor handed to the feed assembler.
// ViewerID is zero for anonymous requests.
type FeedQuery struct {
	Scope    FeedScope
	GameID   int64
	UserID   int64
	ViewerID int64
	Page     int
	PageSize int
}
