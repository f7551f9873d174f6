package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nbarreto/gamereel/internal/apperror"
	"github.com/nbarreto/gamereel/internal/catalog"
	"github.com/nbarreto/gamereel/internal/model"
)

type mockGameRepo struct {
	records  map[int64]*model.GameRecord
	upserted []int64
}

func (m *mockGameRepo) GetGame(ctx context.Context, id int64) (*model.GameRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, apperror.NotFound("game", id)
	}
	return record, nil
}

func (m *mockGameRepo) GetGameBatch(ctx context.Context, ids []int64) (map[int64]*model.GameRecord, error) {
	out := make(map[int64]*model.GameRecord)
	for _, id := range ids {
		if record, ok := m.records[id]; ok {
			out[id] = record
		}
	}
	return out, nil
}

func (m *mockGameRepo) UpsertGame(ctx context.Context, record *model.GameRecord) error {
	if m.records == nil {
		m.records = make(map[int64]*model.GameRecord)
	}
	m.records[record.ID] = record
	m.upserted = append(m.upserted, record.ID)
	return nil
}

type mockCatalog struct {
	games      map[int64]*model.GameRecord
	err        error
	batchCalls [][]int64
	oneCalls   []int64
}

func (m *mockCatalog) FetchOne(ctx context.Context, id int64) (*model.GameRecord, error) {
	m.oneCalls = append(m.oneCalls, id)
	if m.err != nil {
		return nil, m.err
	}
	record, ok := m.games[id]
	if !ok {
		return nil, apperror.NotFound("game", id)
	}
	return record, nil
}

func (m *mockCatalog) FetchBatch(ctx context.Context, ids []int64) (map[int64]*model.GameRecord, error) {
	m.batchCalls = append(m.batchCalls, ids)
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[int64]*model.GameRecord)
	for _, id := range ids {
		if record, ok := m.games[id]; ok {
			out[id] = record
		}
	}
	return out, nil
}

func (m *mockCatalog) Search(ctx context.Context, query string, limit int) ([]catalog.Suggestion, error) {
	return nil, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func gameRecord(id int64, refreshed time.Time) *model.GameRecord {
	return &model.GameRecord{ID: id, Name: "game", LastRefreshed: refreshed}
}

func newCacheService(repo *mockGameRepo, cat *mockCatalog, now time.Time) *GameCacheService {
	svc := NewGameCacheService(repo, cat, discardLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func TestResolve_FreshRecordsSkipUpstream(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &mockGameRepo{records: map[int64]*model.GameRecord{
		10: gameRecord(10, now.Add(-time.Hour)),
		11: gameRecord(11, now.Add(-6*24*time.Hour)),
	}}
	cat := &mockCatalog{}
	svc := newCacheService(repo, cat, now)

	got, err := svc.Resolve(context.Background(), []int64{10, 11})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if len(cat.batchCalls) != 0 {
		t.Fatalf("expected no upstream calls, got %d", len(cat.batchCalls))
	}
}

func TestResolve_BatchesStaleAndMissing(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &mockGameRepo{records: map[int64]*model.GameRecord{
		10: gameRecord(10, now.Add(-time.Hour)),      // fresh
		11: gameRecord(11, now.Add(-8*24*time.Hour)), // stale
	}}
	cat := &mockCatalog{games: map[int64]*model.GameRecord{
		11: gameRecord(11, now),
		20: gameRecord(20, now),
	}}
	svc := newCacheService(repo, cat, now)

	got, err := svc.Resolve(context.Background(), []int64{10, 11, 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if len(cat.batchCalls) != 1 {
		t.Fatalf("expected a single batch call, got %d", len(cat.batchCalls))
	}
	if len(cat.batchCalls[0]) != 2 {
		t.Fatalf("expected the batch to carry the stale and missing ids, got %v", cat.batchCalls[0])
	}
	if len(repo.upserted) != 2 {
		t.Fatalf("expected fetched records to be written back, upserted %v", repo.upserted)
	}
}

func TestResolve_DegradesToCacheOnOutage(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	stale := gameRecord(2, now.Add(-10*24*time.Hour))
	repo := &mockGameRepo{records: map[int64]*model.GameRecord{
		1: gameRecord(1, now.Add(-time.Hour)),
		2: stale,
	}}
	cat := &mockCatalog{err: apperror.Unavailable("game catalog")}
	svc := newCacheService(repo, cat, now)

	got, err := svc.Resolve(context.Background(), []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("outage must not surface as an error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected the fresh and stale records, got %d", len(got))
	}
	if got[2] != stale {
		t.Fatal("expected the stale cached record to be served during the outage")
	}
	if _, ok := got[3]; ok {
		t.Fatal("an id never cached must stay absent during an outage")
	}
}

func TestResolve_MissingUpstreamIDsAreAbsent(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &mockGameRepo{}
	cat := &mockCatalog{games: map[int64]*model.GameRecord{
		1: gameRecord(1, now),
		3: gameRecord(3, now),
	}}
	svc := newCacheService(repo, cat, now)

	got, err := svc.Resolve(context.Background(), []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if _, ok := got[2]; ok {
		t.Fatal("an id unknown upstream must be absent, not an error")
	}
}

func TestResolve_ServesStaleWhenUpstreamOmitsID(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	stale := gameRecord(5, now.Add(-9*24*time.Hour))
	repo := &mockGameRepo{records: map[int64]*model.GameRecord{5: stale}}
	cat := &mockCatalog{games: map[int64]*model.GameRecord{6: gameRecord(6, now)}}
	svc := newCacheService(repo, cat, now)

	got, err := svc.Resolve(context.Background(), []int64{5, 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[5] != stale {
		t.Fatal("expected the stale cached record when the upstream omits the id")
	}
}

func TestResolve_DedupesAndDropsInvalidIDs(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &mockGameRepo{}
	cat := &mockCatalog{games: map[int64]*model.GameRecord{1: gameRecord(1, now)}}
	svc := newCacheService(repo, cat, now)

	got, err := svc.Resolve(context.Background(), []int64{1, 1, 0, -5, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if len(cat.batchCalls) != 1 || len(cat.batchCalls[0]) != 1 {
		t.Fatalf("expected one batch call with the deduped id, got %v", cat.batchCalls)
	}
}

func TestStalenessBoundary(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	justFresh := gameRecord(1, now.Add(-model.StaleAfter))
	justStale := gameRecord(2, now.Add(-model.StaleAfter-time.Minute))

	if justFresh.IsStale(now) {
		t.Fatal("a record exactly at the refresh window must still count as fresh")
	}
	if !justStale.IsStale(now) {
		t.Fatal("a record past the refresh window must count as stale")
	}
}

func TestGetGame_ReadThrough(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &mockGameRepo{}
	cat := &mockCatalog{games: map[int64]*model.GameRecord{5: gameRecord(5, now)}}
	svc := newCacheService(repo, cat, now)

	record, err := svc.GetGame(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ID != 5 {
		t.Fatalf("expected game 5, got %d", record.ID)
	}
	if len(repo.upserted) != 1 {
		t.Fatal("expected the fetched record to be written back")
	}

	// Second read must be served from cache.
	if _, err := svc.GetGame(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cat.oneCalls) != 1 {
		t.Fatalf("expected a single upstream call, got %d", len(cat.oneCalls))
	}
}

func TestGetGame_ServesStaleOnOutage(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	stale := gameRecord(5, now.Add(-30*24*time.Hour))
	repo := &mockGameRepo{records: map[int64]*model.GameRecord{5: stale}}
	cat := &mockCatalog{err: apperror.Unavailable("game catalog")}
	svc := newCacheService(repo, cat, now)

	record, err := svc.GetGame(context.Background(), 5)
	if err != nil {
		t.Fatalf("expected the stale record, got error %v", err)
	}
	if record != stale {
		t.Fatal("expected the stale cached record during the outage")
	}
}

func TestGetGame_SurfacesOutageWhenUncached(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &mockGameRepo{}
	cat := &mockCatalog{err: apperror.Unavailable("game catalog")}
	svc := newCacheService(repo, cat, now)

	_, err := svc.GetGame(context.Background(), 5)
	if err == nil {
		t.Fatal("expected the outage to surface when nothing is cached")
	}
}
