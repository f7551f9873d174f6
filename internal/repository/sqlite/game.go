package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/model"
	"github.com/nbarreto/gamereel/internal/repository"
)

// Compile-time check that *DB satisfies the interface.
var _ repository.GameRepository = (*DB)(nil)

const gameColumns = `id, name, summary, rating, cover_url, release_date,
	platforms, artwork_urls, last_refreshed, created_at`

// GetGame retrieves one cached game record. An absent row is apperror.ErrNotFound;
// the cache orchestrator treats that the same as a stale record.
func (db *DB) GetGame(ctx context.Context, id int64) (*model.GameRecord, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = ?`, id)

	record, err := scanGame(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("game", id)
		}
		return nil, fmt.Errorf("sqlite: getting game %d: %w", id, err)
	}
	return record, nil
}

// GetGameBatch returns the cached records for the given IDs. IDs with no row are
// simply absent from the map — callers decide what absence means.
func (db *DB) GetGameBatch(ctx context.Context, ids []int64) (map[int64]*model.GameRecord, error) {
	result := make(map[int64]*model.GameRecord, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id IN (`+placeholders(len(ids))+`)`,
		int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: batch getting games: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning game row: %w", err)
		}
		result[record.ID] = record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating games: %w", err)
	}
	return result, nil
}

// UpsertGame writes the record, overwriting any previous version of the same ID
// and bumping last_refreshed to now. Idempotent and last-writer-wins: two
// requests both deciding a record was stale can upsert concurrently without
// coordination.
func (db *DB) UpsertGame(ctx context.Context, record *model.GameRecord) error {
	platforms, err := json.Marshal(record.Platforms)
	if err != nil {
		return fmt.Errorf("sqlite: encoding platforms for game %d: %w", record.ID, err)
	}
	artworks, err := json.Marshal(record.ArtworkURLs)
	if err != nil {
		return fmt.Errorf("sqlite: encoding artworks for game %d: %w", record.ID, err)
	}

	now := time.Now().UTC()
	record.LastRefreshed = now

	var rating sql.NullFloat64
	if record.Rating != nil {
		rating = sql.NullFloat64{Float64: *record.Rating, Valid: true}
	}

	// ON CONFLICT keeps created_at from the first insert — only the
	// metadata and last_refreshed move.
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO games (id, name, summary, rating, cover_url, release_date,
			platforms, artwork_urls, last_refreshed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			summary = excluded.summary,
			rating = excluded.rating,
			cover_url = excluded.cover_url,
			release_date = excluded.release_date,
			platforms = excluded.platforms,
			artwork_urls = excluded.artwork_urls,
			last_refreshed = excluded.last_refreshed`,
		record.ID, record.Name, record.Summary, rating, record.CoverURL,
		record.ReleaseDate, string(platforms), string(artworks), now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting game %d: %w", record.ID, err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGame(s scanner) (*model.GameRecord, error) {
	var (
		record    model.GameRecord
		rating    sql.NullFloat64
		platforms string
		artworks  string
	)
	err := s.Scan(
		&record.ID, &record.Name, &record.Summary, &rating, &record.CoverURL,
		&record.ReleaseDate, &platforms, &artworks, &record.LastRefreshed,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rating.Valid {
		r := rating.Float64
		record.Rating = &r
	}
	if err := json.Unmarshal([]byte(platforms), &record.Platforms); err != nil {
		return nil, fmt.Errorf("decoding platforms for game %d: %w", record.ID, err)
	}
	if err := json.Unmarshal([]byte(artworks), &record.ArtworkURLs); err != nil {
		return nil, fmt.Errorf("decoding artworks for game %d: %w", record.ID, err)
	}
	return &record, nil
}
