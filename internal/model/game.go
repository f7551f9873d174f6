// Package model defines the data structures used throughout the application.
package model

import "time"

// StaleAfter is how long a cached game record stays servable before the next
// read triggers a catalog re-fetch. Catalog metadata changes rarely, so a
// week keeps upstream traffic near zero without records going visibly wrong.
const StaleAfter = 7 * 24 * time.Hour

// GameRecord is the locally cached, canonical shape of a catalog game.
//
// The ID is assigned by the external catalog and is stable — it doubles as
// the primary key of the cache table. Records are created on first fetch and
// overwritten in place on every successful re-fetch; they are never deleted.
//
// Rating is a pointer because "not yet rated" and "rated 0" are different
// things to the catalog. CoverURL and ReleaseDate use the empty string as
// their absent value — simpler to work with and safe to serialize.
type GameRecord struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Summary       string    `json:"summary,omitempty"`
	Rating        *float64  `json:"rating,omitempty"`
	CoverURL      string    `json:"cover_url,omitempty"`
	ReleaseDate   string    `json:"release_date,omitempty"` // human label, e.g. "Mar 03, 2017"
	Platforms     []string  `json:"platforms,omitempty"`
	ArtworkURLs   []string  `json:"artwork_urls,omitempty"`
	LastRefreshed time.Time `json:"-"`
	CreatedAt     time.Time `json:"-"`
}

// IsStale reports whether the record is too old to serve without a re-fetch.
// Strictly greater-than: a record refreshed exactly StaleAfter ago is still
// fresh until the clock passes the boundary.
func (g *GameRecord) IsStale(now time.Time) bool {
	return now.Sub(g.LastRefreshed) > StaleAfter
}
