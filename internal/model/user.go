package model

import "time"

// User represents a registered account.
//
// PasswordHash holds the bcrypt output (salt embedded) and is never
// serialized — the json:"-" tag keeps it out of every response.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the public view of a user, as returned by the profile endpoint.
// Counts are computed at read time; ViewerFollows is relative to the
// authenticated caller.
type Profile struct {
	User           *User `json:"user"`
	ReviewCount    int   `json:"comment_count"`
	FollowerCount  int   `json:"follower_count"`
	FollowingCount int   `json:"following_count"`
	ViewerFollows  bool  `json:"viewer_follows"`
}
