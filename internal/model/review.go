package model

import "time"

// Review is a post about a game: text, a GIF, or both. At least one of Body
// and GIFURL is always non-empty — the service layer enforces it.
//
// Reviews have no edit operation. They are created and deleted by their
// owner; deletion cascades to likes, comments, and reposts at the storage
// layer.
type Review struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	GameID    int64     `json:"id_game"`
	Body      string    `json:"comment,omitempty"`
	GIFURL    string    `json:"gif_url,omitempty"`
	CreatedAt time.Time `json:"date_created"`
}

// Repost points at an existing review, optionally adding text. One repost
// per (user, review) pair; users cannot repost their own reviews.
type Repost struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ReviewID  int64     `json:"review_id"`
	Body      string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"date_created"`
}
