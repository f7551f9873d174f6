package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/nbarreto/gamereel/internal/catalog"
	"github.com/nbarreto/gamereel/internal/model"
	"github.com/nbarreto/gamereel/internal/repository"
)

// CatalogClient is the slice of the upstream catalog the cache needs.
type CatalogClient interface {
	FetchOne(ctx context.Context, id int64) (*model.GameRecord, error)
	FetchBatch(ctx context.Context, ids []int64) (map[int64]*model.GameRecord, error)
	Search(ctx context.Context, query string, limit int) ([]catalog.Suggestion, error)
}

// GameCacheService serves game metadata through a read-through cache backed
// by the games table. Records older than model.StaleAfter are refreshed from
// the upstream catalog; when the upstream is down, whatever the cache holds
// is served instead so reads keep working in degraded form.
type GameCacheService struct {
	games   repository.GameRepository
	catalog CatalogClient
	logger  *slog.Logger
	now     func() time.Time
}

func NewGameCacheService(games repository.GameRepository, catalog CatalogClient, logger *slog.Logger) *GameCacheService {
	return &GameCacheService{
		games:   games,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// Resolve returns metadata for the given game IDs, keyed by ID. Fresh cached
// records are served as-is; stale and missing ones are fetched from upstream
// in a single batch call and written back. IDs the upstream does not know are
// absent from the result rather than an error.
func (s *GameCacheService) Resolve(ctx context.Context, ids []int64) (map[int64]*model.GameRecord, error) {
	unique := dedupeIDs(ids)
	if len(unique) == 0 {
		return map[int64]*model.GameRecord{}, nil
	}

	cached, err := s.games.GetGameBatch(ctx, unique)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	result := make(map[int64]*model.GameRecord, len(unique))
	var toFetch []int64
	for _, id := range unique {
		record, ok := cached[id]
		if ok && !record.IsStale(now) {
			result[id] = record
			continue
		}
		toFetch = append(toFetch, id)
	}

	if len(toFetch) == 0 {
		return result, nil
	}

	fetched, err := s.catalog.FetchBatch(ctx, toFetch)
	if err != nil {
		// Upstream outage. Fall back to stale cached copies where we
		// have them; IDs never cached simply stay absent.
		s.logger.Warn("game catalog unavailable, serving cached records",
			"error", err, "requested", len(toFetch))
		for _, id := range toFetch {
			if record, ok := cached[id]; ok {
				result[id] = record
			}
		}
		return result, nil
	}

	for id, record := range fetched {
		if err := s.games.UpsertGame(ctx, record); err != nil {
			s.logger.Error("failed to cache game record", "game_id", id, "error", err)
		}
		result[id] = record
	}

	// Fetched set can miss IDs the upstream no longer lists; keep any
	// stale copy we still hold rather than dropping the game entirely.
	for _, id := range toFetch {
		if _, ok := result[id]; !ok {
			if record, ok := cached[id]; ok {
				result[id] = record
			}
		}
	}

	return result, nil
}

// GetGame is the single-record read-through used by the game detail page.
// Unlike Resolve it surfaces upstream errors: a detail view with no data to
// show has nothing to degrade to.
func (s *GameCacheService) GetGame(ctx context.Context, id int64) (*model.GameRecord, error) {
	cached, err := s.games.GetGameBatch(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if record, ok := cached[id]; ok && !record.IsStale(s.now().UTC()) {
		return record, nil
	}

	record, err := s.catalog.FetchOne(ctx, id)
	if err != nil {
		// Serve a stale copy if we hold one, otherwise report the error.
		if stale, ok := cached[id]; ok {
			s.logger.Warn("game catalog unavailable, serving stale record",
				"game_id", id, "error", err)
			return stale, nil
		}
		return nil, err
	}

	if err := s.games.UpsertGame(ctx, record); err != nil {
		s.logger.Error("failed to cache game record", "game_id", id, "error", err)
	}
	return record, nil
}

// Search proxies a name query to the upstream catalog. Results are transient
// suggestions for an autocomplete box, so they bypass the cache.
func (s *GameCacheService) Search(ctx context.Context, query string, limit int) ([]catalog.Suggestion, error) {
	return s.catalog.Search(ctx, query, limit)
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
