package model

import "time"

// Like is a toggle row: it exists while the user likes the review.
// Uniqueness of the (user, review) pair is a storage constraint, which is
// what makes concurrent toggles safe without application-level locking.
type Like struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ReviewID  int64     `json:"review_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Follow records that FollowerID follows FollowingID. Self-follows are
// rejected above the storage layer; the pair is unique below it.
type Follow struct {
	ID          int64     `json:"id"`
	FollowerID  int64     `json:"follower_id"`
	FollowingID int64     `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// SavedGame is an entry in a user's personal game list. Adding one warms
// the game cache, so GameInfo can always be embedded on reads.
type SavedGame struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	GameID    int64       `json:"game_id"`
	CreatedAt time.Time   `json:"created_at"`
	GameInfo  *GameRecord `json:"game_info,omitempty"`
}
