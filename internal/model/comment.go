package model

import "time"

// Comment is a reply on a review. ParentID, when set, points at another
// comment on the same review — the schema permits arbitrary depth but
// reads only materialize one level of replies.
type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"` // joined at read time
	ReviewID  int64     `json:"review_id"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	Body      string    `json:"comment,omitempty"`
	GIFURL    string    `json:"gif_url,omitempty"`
	CreatedAt time.Time `json:"date_created"`

	Replies []Comment `json:"replies,omitempty"` // one level, top-level comments only
}
